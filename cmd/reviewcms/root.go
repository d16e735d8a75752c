package main

import (
	"github.com/spf13/cobra"

	"github.com/eringen/reviewcms"
)

// rootOptions holds global flags and the configuration they resolve to.
type rootOptions struct {
	ConfigFile string
	Config     reviewcms.SiteConfig
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "reviewcms",
		Short: "reviewcms - a headless content store for game reviews",
		Long: `A headless content store for game reviews.

Settings come from reviewcms.yaml (or --config) and REVIEWCMS_* environment
variables, e.g. REVIEWCMS_DATABASE_PATH or REVIEWCMS_ADMIN_PASSWORD.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := reviewcms.LoadConfig("REVIEWCMS_", opts.ConfigFile)
			if err != nil {
				return err
			}
			opts.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", reviewcms.EnvOr("REVIEWCMS_CONFIG", ""), "config file (default ./reviewcms.yaml)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newQueryCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}
