package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/datawire/pyindex/pkg/cliutil"
	"github.com/datawire/pyindex/pkg/python/pep503"
	"github.com/datawire/pyindex/pkg/resolve"
)

func init() {
	var outDir string
	cmd := &cobra.Command{
		Use:   "resolve [flags] REPO_URL VERSION NAME",
		Short: "Download or build the artifacts for one version of a package",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(3)),

		Long: "Obtain the wheel and sdist for VERSION of the package NAME, whose source is " +
			"the GitHub repository REPO_URL, the same way that `pyindex publish` does, " +
			"and print the paths of what was obtained.  The site is not modified.",

		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repoURL, version, name := args[0], args[1], args[2]
			if err := pep503.ValidateName(name); err != nil {
				return cliutil.FlagErrorFunc(cmd, err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.Site.ArtifactDir(pep503.NormalizeName(name))
			}

			arts, err := resolve.New(ctx, cfg).Resolve(ctx, repoURL, version, name, outDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, file := range []struct {
				Kind, Path string
			}{
				{"wheel", arts.Wheel},
				{"sdist", arts.TarGz},
			} {
				if file.Path == "" {
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", file.Kind, filepath.ToSlash(file.Path))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output-dir", "o", "",
		"Put the artifacts in `DIR` (default: the package's directory in the site's artifact tree)")

	argparser.AddCommand(cmd)
}
