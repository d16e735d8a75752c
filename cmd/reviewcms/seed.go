package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/reviewcms"
)

func newSeedCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Import reviews from a JSON or YAML file into the store",
		Long: `Import reviews from a JSON or YAML file into the store.

Reviews are upserted by slug in one transaction. Without an argument the
configured seed_path is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := rootOpts.Config.SeedPath
			if len(args) == 1 {
				file = args[0]
			}
			if file == "" {
				return fmt.Errorf("no records file given and seed_path is not set")
			}
			n, err := runSeed(rootOpts.Config.DatabasePath, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d reviews into %s\n", n, rootOpts.Config.DatabasePath)
			return nil
		},
	}
	return cmd
}

func runSeed(dbPath, file string) (int, error) {
	reviews, err := reviewcms.LoadRecords(file)
	if err != nil {
		return 0, err
	}
	store, err := reviewcms.NewStore(dbPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	if err := store.ImportReviews(reviews); err != nil {
		return 0, err
	}
	return len(reviews), nil
}
