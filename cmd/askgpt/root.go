package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/instinct/askgpt"
	"github.com/instinct/askgpt/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalFlags struct {
	configPath string
	verbose    bool
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "askgpt",
		Short:         "Bridge chat questions to a local language model responder",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "askgpt.toml", "path to the TOML config file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log frame traffic")

	cmd.AddCommand(askCmd(flags), stubResponderCmd(flags), mcpCmd(flags))

	return cmd
}

// load reads the config file and builds the logger every subcommand uses.
func (f *globalFlags) load() (*config.Options, *slog.Logger, error) {
	options, err := config.LoadFile(f.configPath)
	if err != nil {
		return nil, nil, err
	}

	log := askgpt.NewTextLogger(os.Stderr, f.verbose)
	options.Logger = log

	return options, log, nil
}
