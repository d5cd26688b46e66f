package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/datawire/pyindex/pkg/cliutil"
	"github.com/datawire/pyindex/pkg/migrate"
	"github.com/datawire/pyindex/pkg/resolve"
)

func init() {
	cmd := &cobra.Command{
		Use:   "migrate [flags]",
		Short: "Point every published version at a downloaded artifact",
		Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),

		Long: "For every package page in the site, resolve the wheel or sdist of each listed " +
			"version and rewrite its link to point at the downloaded file.  Versions that " +
			"can't be resolved keep their source link, minus any \"#egg=\" fragment." +
			"\n\n" +
			"A package that fails to migrate does not stop the others.",

		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			migrator := &migrate.Migrator{
				Config:   cfg,
				Resolver: resolve.New(ctx, cfg),
			}
			result, err := migrator.Run(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result)
			if len(result.Failed) > 0 {
				failed := make([]string, 0, len(result.Failed))
				for name := range result.Failed {
					failed = append(failed, name)
				}
				sort.Strings(failed)
				fmt.Fprintln(out, "Some packages could not be fully migrated; they will "+
					"continue to work with their source links:")
				for _, name := range failed {
					fmt.Fprintf(out, "  %s: %v\n", name, result.Failed[name])
				}
			}
			return nil
		},
	}

	argparser.AddCommand(cmd)
}
