package main

import (
	"github.com/spf13/cobra"

	"github.com/instinct/askgpt"
	"github.com/instinct/askgpt/internal/mcp"
)

func mcpCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the ask tool over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			options, log, err := flags.load()
			if err != nil {
				return err
			}

			asker := askgpt.NewAsker(askgpt.WithOptions(options))

			return mcp.Serve(cmd.Context(), mcp.NewServer(asker, version, log))
		},
	}
}
