package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/instinct/askgpt"
)

func askCmd(flags *globalFlags) *cobra.Command {
	var (
		inventory string
		script    string
		port      int
		follow    bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Launch the responder and ask one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, _, err := flags.load()
			if err != nil {
				return err
			}

			opts := []askgpt.Option{askgpt.WithOptions(options)}
			if script != "" {
				opts = append(opts, askgpt.WithScriptPath(script))
			}

			if port != 0 {
				opts = append(opts, askgpt.WithPort(port))
			}

			if follow {
				errOut := cmd.ErrOrStderr()
				opts = append(opts, askgpt.WithOutputSink(func(line string) {
					fmt.Fprintln(errOut, "responder:", line)
				}))
			}

			answer, err := askgpt.Ask(cmd.Context(), strings.Join(args, " "), inventory, opts...)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)

			return err
		},
	}

	cmd.Flags().StringVarP(&inventory, "inventory", "i", "Empty Inventory", "inventory summary sent with the question")
	cmd.Flags().StringVar(&script, "script", "", "responder script (overrides the config file)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "responder port (overrides the config file)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "copy responder output to stderr while it runs")

	return cmd
}
