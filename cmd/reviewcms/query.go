package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/eringen/reviewcms"
	"github.com/eringen/reviewcms/query"
)

func newQueryCommand(rootOpts *rootOptions) *cobra.Command {
	var dataFile string
	cmd := &cobra.Command{
		Use:   "query [raw-query]",
		Short: "Evaluate a collection query and print the envelope",
		Long: `Evaluate a collection query and print the response envelope as JSON.

The query uses the same bracketed form as GET /api/reviews, e.g.

  reviewcms query 'filters[title][$containsi]=knight&fields[0]=slug'

Records come from the store, or from a JSON/YAML file given with --data.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			env, err := runQuery(rootOpts.Config, dataFile, raw)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(env)
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", "", "read records from this file instead of the store")
	return cmd
}

func runQuery(cfg reviewcms.SiteConfig, dataFile, raw string) (query.Envelope, error) {
	q, err := query.Parse(raw)
	if err != nil {
		return query.Envelope{}, err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return query.Envelope{}, err
	}

	var records []reviewcms.Review
	if dataFile != "" {
		records, err = reviewcms.LoadRecords(dataFile)
	} else {
		records, err = loadStoreRecords(cfg.DatabasePath)
	}
	if err != nil {
		return query.Envelope{}, err
	}
	return query.New(opts...).Process(records, q)
}

func loadStoreRecords(dbPath string) ([]reviewcms.Review, error) {
	store, err := reviewcms.NewStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.ListReviews()
}
