package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultConfigPath = "config/config.yaml"

type options struct {
	port       string
	configPath string
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "quizboard",
		Short:         "Classroom quiz board game server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&opts.port, "port", "", "port to listen on, overrides config (env: QUIZBOARD_PORT)")
	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "path to YAML config (env: QUIZBOARD_CONFIG)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return bindEnv(cmd.Flags())
	}

	cmd.AddCommand(NewStartCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))
	cmd.AddCommand(NewQuizzesCmd(opts))
	return cmd
}

// bindEnv fills flags left unset on the command line from QUIZBOARD_* variables.
func bindEnv(fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix("QUIZBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			if setErr := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); setErr != nil {
				err = fmt.Errorf("flag %s from env: %w", f.Name, setErr)
			}
		}
	})
	return err
}
