package askgpt

import (
	"context"
	"fmt"

	"github.com/instinct/askgpt/internal/client"
)

// NewSession creates an unconnected session with the responder at the
// configured host and port.
//
// Sessions are single-use: connect, send one question, read one answer,
// then DisconnectAndClose. Create a new session for the next question.
//
// Example usage:
//
//	s := askgpt.NewSession(askgpt.WithPort(8080))
//	defer s.DisconnectAndClose()
//
//	if err := s.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := s.SendQuery(ctx, "2+2?", "Empty Inventory"); err != nil {
//	    log.Fatal(err)
//	}
//
//	answer, err := s.ReceiveResponse(ctx)
func NewSession(opts ...Option) *Session {
	return client.New(applyOptions(opts))
}

// WithSession manages session lifecycle with automatic cleanup.
//
// This helper creates a session, waits for the responder to accept the
// connection, executes the callback function, and always finishes with the
// disconnect handshake. The responder must already be running; use Ask or an
// Asker to launch it per question.
//
// If the callback returns an error, it is returned to the caller.
func WithSession(ctx context.Context, fn func(*Session) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts).WithDefaults()

	session := client.New(options)
	defer session.DisconnectAndClose()

	if err := session.ConnectWithRetry(ctx, client.PolicyFromOptions(options)); err != nil {
		return fmt.Errorf("connect session: %w", err)
	}

	return fn(session)
}
