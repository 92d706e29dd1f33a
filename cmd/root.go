// Package cmd holds the commentbox command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cppla/commentbox/config"
	"github.com/cppla/commentbox/utils"
)

// NewRootCmd builds the commentbox command tree. Running it without a
// subcommand serves the API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "commentbox",
		Short:         "Threaded comment backend with cookie sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", config.DefaultPath, "path to the YAML config file")
	flags.String("log-level", "", "log level override (debug, info, warn, error)")

	serve := NewServeCmd()
	cmd.RunE = serve.RunE
	cmd.Flags().AddFlagSet(serve.Flags())

	cmd.AddCommand(serve)
	cmd.AddCommand(NewMigrateCmd())
	return cmd
}

// loadConfig reads the config named by --config, letting the command's flags override it.
func loadConfig(cmd *cobra.Command) (config.AppConfig, error) {
	flags := mergedFlags(cmd)
	path, _ := flags.GetString("config")
	return config.Load(path, flags)
}

func mergedFlags(cmd *cobra.Command) *pflag.FlagSet {
	// InheritedFlags also merges persistent flags into cmd.Flags()
	inherited := cmd.InheritedFlags()
	set := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	set.AddFlagSet(cmd.Flags())
	set.AddFlagSet(inherited)
	return set
}

func newLogger(cfg config.AppConfig) (*zap.Logger, error) {
	return utils.NewLogger(cfg.Log)
}
