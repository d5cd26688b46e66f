// Command pyindex maintains a static-site Python package index.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/datawire/pyindex/pkg/cliutil"
	"github.com/datawire/pyindex/pkg/config"
)

var argparser = &cobra.Command{
	Use:   "pyindex {[flags]|SUBCOMMAND...}",
	Short: "Maintain a static-site Python package index",

	Args: cliutil.OnlySubcommands,
	RunE: cliutil.RunSubcommands,

	SilenceErrors: true, // main() will handle this after .ExecuteContext() returns
	SilenceUsage:  true, // our FlagErrorFunc will handle it
}

var globalFlags struct {
	Root       string
	ConfigFile string
}

func init() {
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)

	argparser.PersistentFlags().StringVar(&globalFlags.Root, "root", "",
		"Site checkout to operate on (default: the root from the config file, or \".\")")
	argparser.PersistentFlags().StringVar(&globalFlags.ConfigFile, "config", "",
		"Read settings from the YAML `FILE`")
}

// loadConfig builds the configuration from the config file, the global flags, and the
// environment.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(globalFlags.ConfigFile)
	if err != nil {
		return cfg, err
	}
	if globalFlags.Root != "" {
		cfg.Site.Root = globalFlags.Root
	}
	cfg.Hosting.Token = os.Getenv(config.EnvToken)
	return cfg, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := argparser.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(argparser.ErrOrStderr(), "%s: error: %v\n", argparser.CommandPath(), err)
		os.Exit(cliutil.ExitFailure)
	}
}
