package cliutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvAnnotation is the pflag annotation that names the environment variable a flag falls back
// to.
const EnvAnnotation = "cliutil_env"

// BindEnv records that the flag called name takes its value from the environment variable
// envVar when it is not given on the command line.  The binding is shown in the "Environment:"
// section of HelpTemplate, and is applied by ApplyEnv.
func BindEnv(flags *pflag.FlagSet, name, envVar string) {
	if err := flags.SetAnnotation(name, EnvAnnotation, []string{envVar}); err != nil {
		panic(err)
	}
}

// ApplyEnv sets every flag that has a BindEnv binding, and was not given on the command line,
// from its environment variable (if that variable is set).
func ApplyEnv(flags *pflag.FlagSet) error {
	var errs []string
	flags.VisitAll(func(flag *pflag.Flag) {
		envVars := flag.Annotations[EnvAnnotation]
		if flag.Changed || len(envVars) == 0 {
			return
		}
		val, ok := os.LookupEnv(envVars[0])
		if !ok {
			return
		}
		if err := flags.Set(flag.Name, val); err != nil {
			errs = append(errs, fmt.Sprintf("$%s: %v", envVars[0], err))
		}
	})
	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

// EnvUsages returns a table of the environment variables that cmd's flags are bound to, or an
// empty string if there are none.
func EnvUsages(cmd *cobra.Command) string {
	type row struct {
		env, flag string
	}
	var rows []row
	width := 0
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		envVars := flag.Annotations[EnvAnnotation]
		if flag.Hidden || len(envVars) == 0 {
			return
		}
		rows = append(rows, row{env: envVars[0], flag: "--" + flag.Name})
		if len(envVars[0]) > width {
			width = len(envVars[0])
		}
	})
	var ret strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&ret, "  %-*s   %s\n", width, r.env, r.flag)
	}
	return ret.String()
}
