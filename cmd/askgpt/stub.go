package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/instinct/askgpt/internal/responder"
)

func stubResponderCmd(flags *globalFlags) *cobra.Command {
	var reply string

	cmd := &cobra.Command{
		Use:   "stub-responder",
		Short: "Serve one session with a canned reply, for local testing",
		Long: "Listens on the configured host and port (or ASKGPT_HOST and ASKGPT_PORT " +
			"when launched by the bridge), answers every question with a canned reply, " +
			"and exits after the disconnect notice.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			options, log, err := flags.load()
			if err != nil {
				return err
			}

			options = options.WithDefaults()
			addr := net.JoinHostPort(options.Host, strconv.Itoa(options.Port))

			srv, err := responder.Listen(log, addr, responder.Canned(reply))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Stub responder listening on %s\n", srv.Addr())

			return srv.ServeOne(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&reply, "reply", "This is a canned answer.", "text returned for every question")

	return cmd
}
