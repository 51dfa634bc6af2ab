package askgpt_test

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instinct/askgpt"
	"github.com/instinct/askgpt/internal/responder"
)

func startResponder(t *testing.T, answerer responder.Answerer) (int, <-chan error) {
	t.Helper()

	srv, err := responder.Listen(nil, "127.0.0.1:0", answerer)
	require.NoError(t, err)

	t.Cleanup(func() { _ = srv.Close() })

	_, portStr, err := net.SplitHostPort(srv.Addr().String())
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() {
		done <- srv.ServeOne(context.Background())
	}()

	return port, done
}

func TestNewSession_StartsUnconnected(t *testing.T) {
	s := askgpt.NewSession(askgpt.WithHost("127.0.0.1"), askgpt.WithPort(9))

	assert.Equal(t, askgpt.StateUnconnected, s.State())
	assert.Equal(t, "127.0.0.1:9", s.Addr())
	assert.NotEmpty(t, s.ID())

	s.DisconnectAndClose()
	assert.Equal(t, askgpt.StateClosed, s.State())
}

func TestWithSession_RoundTrip(t *testing.T) {
	port, done := startResponder(t, arithmetic())

	var session *askgpt.Session

	err := askgpt.WithSession(context.Background(), func(s *askgpt.Session) error {
		session = s

		if err := s.SendQuery(context.Background(), "2+2?", "Empty Inventory"); err != nil {
			return err
		}

		answer, err := s.ReceiveResponse(context.Background())
		if err != nil {
			return err
		}

		assert.Equal(t, "4", answer)

		return nil
	}, askgpt.WithHost("127.0.0.1"), askgpt.WithPort(port))
	require.NoError(t, err)

	require.NotNil(t, session)
	assert.Equal(t, askgpt.StateClosed, session.State())

	select {
	case err := <-done:
		require.NoError(t, err, "responder should see the disconnect notice")
	case <-time.After(5 * time.Second):
		t.Fatal("responder did not finish")
	}
}

func TestWithSession_CallbackError(t *testing.T) {
	port, _ := startResponder(t, arithmetic())
	wantErr := errors.New("callback failed")

	var session *askgpt.Session

	err := askgpt.WithSession(context.Background(), func(s *askgpt.Session) error {
		session = s

		return wantErr
	}, askgpt.WithHost("127.0.0.1"), askgpt.WithPort(port))
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, askgpt.StateClosed, session.State())
}

func TestWithSession_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := askgpt.WithSession(ctx, func(*askgpt.Session) error {
		t.Error("callback should not be called with cancelled context")

		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithSession_ResponderNotRunning(t *testing.T) {
	err := askgpt.WithSession(context.Background(), func(*askgpt.Session) error {
		t.Error("callback should not be called without a responder")

		return nil
	},
		askgpt.WithHost("127.0.0.1"),
		askgpt.WithPort(freePort(t)),
		askgpt.WithReadyTimeout(200*time.Millisecond),
		askgpt.WithBackoff(10*time.Millisecond, 20*time.Millisecond),
	)
	require.ErrorIs(t, err, askgpt.ErrResponderNotReady)
}
