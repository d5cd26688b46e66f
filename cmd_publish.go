package main

import (
	"github.com/spf13/cobra"

	"github.com/datawire/pyindex/pkg/cliutil"
	"github.com/datawire/pyindex/pkg/config"
	"github.com/datawire/pyindex/pkg/publish"
	"github.com/datawire/pyindex/pkg/resolve"
)

func init() {
	var pkg config.Package
	cmd := &cobra.Command{
		Use:   "publish [flags]",
		Short: "Register, update, or delete a package listing",
		Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),

		Long: "Register a new package, add a version to a registered package, or delete a " +
			"package, in the site checkout." +
			"\n\n" +
			"Every flag defaults to the environment variable shown below, so that this can " +
			"be run from a CI workflow that is triggered with the package metadata." +
			"\n\n" +
			"The wheel and sdist for the version are downloaded from the project's GitHub " +
			"release; if the release has none, the tag is cloned and built with the " +
			"configured build command.  If neither works, the version is linked to the " +
			"source repository instead, and publishing still succeeds.",

		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := cliutil.ApplyEnv(cmd.Flags()); err != nil {
				return cliutil.FlagErrorFunc(cmd, err)
			}
			action, err := publish.ParseAction(pkg)
			if err != nil {
				return cliutil.FlagErrorFunc(cmd, err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			publisher := &publish.Publisher{
				Config:   cfg,
				Resolver: resolve.New(ctx, cfg),
			}
			return publisher.Run(ctx, action)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&pkg.Action, "action", "", "What to do: `REGISTER`, UPDATE, or DELETE")
	flags.StringVar(&pkg.Name, "name", "", "Package `NAME`, as it should be displayed")
	flags.StringVar(&pkg.Version, "version", "", "`VERSION` to register or add")
	flags.StringVar(&pkg.Author, "author", "", "Package `AUTHOR`")
	flags.StringVar(&pkg.Description, "description", "", "One-line `DESCRIPTION` for the index")
	flags.StringVar(&pkg.Homepage, "homepage", "", "GitHub repository `URL` of the project")
	for flag, env := range map[string]string{
		"action":      config.EnvAction,
		"name":        config.EnvName,
		"version":     config.EnvVersion,
		"author":      config.EnvAuthor,
		"description": config.EnvDescription,
		"homepage":    config.EnvHomepage,
	} {
		cliutil.BindEnv(flags, flag, env)
	}

	argparser.AddCommand(cmd)
}
