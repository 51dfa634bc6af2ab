package client

import (
	"bufio"
	"context"
	stderrors "errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instinct/askgpt/internal/config"
	"github.com/instinct/askgpt/internal/errors"
	"github.com/instinct/askgpt/internal/protocol"
	"github.com/instinct/askgpt/internal/responder"
)

// newClientFor creates a client aimed at the given listener address.
func newClientFor(t *testing.T, addr net.Addr, opts *config.Options) *Client {
	t.Helper()

	tcp, ok := addr.(*net.TCPAddr)
	require.True(t, ok)

	if opts == nil {
		opts = &config.Options{}
	}

	opts.Host = tcp.IP.String()
	opts.Port = tcp.Port

	return New(opts)
}

// startResponder runs a one-session responder and returns its address.
func startResponder(t *testing.T, answerer responder.Answerer) (net.Addr, <-chan error) {
	t.Helper()

	srv, err := responder.Listen(nil, "127.0.0.1:0", answerer)
	require.NoError(t, err)

	t.Cleanup(func() { _ = srv.Close() })

	done := make(chan error, 1)

	go func() {
		done <- srv.ServeOne(context.Background())
	}()

	return srv.Addr(), done
}

// startRawPeer accepts one connection and hands it to handle.
func startRawPeer(t *testing.T, handle func(conn net.Conn)) net.Addr {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}

		defer conn.Close()

		handle(conn)
	}()

	return listener.Addr()
}

func requireType[T error](t *testing.T, err error) T {
	t.Helper()

	typed, ok := stderrors.AsType[T](err)
	require.True(t, ok, "expected %T, got %T: %v", *new(T), err, err)

	return typed
}

func TestSession_FullLifecycle(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []*protocol.Request
	)

	addr, done := startResponder(t, responder.AnswerFunc(func(_ context.Context, req *protocol.Request) (string, error) {
		mu.Lock()
		defer mu.Unlock()

		seen = append(seen, req)

		return "4", nil
	}))

	ctx := context.Background()
	c := newClientFor(t, addr, nil)

	require.Equal(t, StateUnconnected, c.State())
	require.NotEmpty(t, c.ID())

	require.NoError(t, c.Connect(ctx))
	require.Equal(t, StateConnected, c.State())

	require.NoError(t, c.SendQuery(ctx, "2+2?", ""))
	require.Equal(t, StateAwaitingResponse, c.State())

	resp, err := c.ReceiveResponse(ctx)
	require.NoError(t, err)
	require.Equal(t, "4", resp)
	require.Equal(t, StateConnected, c.State())

	c.DisconnectAndClose()
	require.Equal(t, StateClosed, c.State())

	select {
	case err := <-done:
		require.NoError(t, err, "responder should exit cleanly on disconnect")
	case <-time.After(5 * time.Second):
		t.Fatal("responder did not observe the disconnect frame")
	}

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, seen, 1)
	require.Equal(t, &protocol.Request{Question: "2+2?"}, seen[0])
}

func TestSession_ResponseRoundTrip(t *testing.T) {
	responses := []string{
		"",
		"plain",
		`embedded "quotes" and \backslashes\`,
		"new\nlines\tand tabs",
		"unicode: ñ, 日本語, 🪓",
		`{"response":"nested"}`,
	}

	for i, want := range responses {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			addr, _ := startResponder(t, responder.Canned(want))

			ctx := context.Background()
			c := newClientFor(t, addr, nil)

			defer c.DisconnectAndClose()

			require.NoError(t, c.Connect(ctx))
			require.NoError(t, c.SendQuery(ctx, `what's "this"?`, "stone:3,dirt:64,"))

			got, err := c.ReceiveResponse(ctx)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestConnect_Refused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := listener.Addr()
	require.NoError(t, listener.Close())

	c := newClientFor(t, addr, nil)

	err = c.Connect(context.Background())
	connErr := requireType[*errors.ConnectionError](t, err)
	require.Equal(t, addr.String(), connErr.Addr)
	require.Equal(t, StateUnconnected, c.State(), "a failed connect may be retried")
}

func TestSession_PeerClosesWithoutReply(t *testing.T) {
	addr := startRawPeer(t, func(conn net.Conn) {
		_, _ = bufio.NewReader(conn).ReadString('\n')
	})

	ctx := context.Background()
	c := newClientFor(t, addr, nil)

	defer c.DisconnectAndClose()

	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.SendQuery(ctx, "hello?", ""))

	_, err := c.ReceiveResponse(ctx)
	require.Error(t, err)

	protoErr := requireType[*errors.ProtocolError](t, err)
	require.ErrorIs(t, protoErr, errors.ErrPeerClosed)
}

func TestSession_MalformedResponse(t *testing.T) {
	for _, line := range []string{"not json", `{"answer":"4"}`, `{"response":42}`} {
		t.Run(line, func(t *testing.T) {
			addr := startRawPeer(t, func(conn net.Conn) {
				reader := bufio.NewReader(conn)
				_, _ = reader.ReadString('\n')
				_, _ = conn.Write([]byte(line + "\n"))
				_, _ = reader.ReadString('\n')
			})

			ctx := context.Background()
			c := newClientFor(t, addr, nil)

			defer c.DisconnectAndClose()

			require.NoError(t, c.Connect(ctx))
			require.NoError(t, c.SendQuery(ctx, "hello?", ""))

			_, err := c.ReceiveResponse(ctx)
			protoErr := requireType[*errors.ProtocolError](t, err)
			require.Equal(t, line, protoErr.RawData)
		})
	}
}

func TestSession_ReadTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	addr := startRawPeer(t, func(conn net.Conn) {
		<-release
	})

	ctx := context.Background()
	c := newClientFor(t, addr, &config.Options{ReadTimeout: 50 * time.Millisecond})

	defer c.DisconnectAndClose()

	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.SendQuery(ctx, "slow?", ""))

	_, err := c.ReceiveResponse(ctx)
	transportErr := requireType[*errors.TransportError](t, err)
	require.Equal(t, "read", transportErr.Op)
}

func TestSession_ContextCancelUnblocksRead(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	addr := startRawPeer(t, func(conn net.Conn) {
		<-release
	})

	c := newClientFor(t, addr, nil)

	defer c.DisconnectAndClose()

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.SendQuery(context.Background(), "slow?", ""))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ReceiveResponse(ctx)
	requireType[*errors.TransportError](t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSession_AbortUnblocksRead(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	addr := startRawPeer(t, func(conn net.Conn) {
		<-release
	})

	ctx := context.Background()
	c := newClientFor(t, addr, nil)

	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.SendQuery(ctx, "slow?", ""))

	errCh := make(chan error, 1)

	go func() {
		_, err := c.ReceiveResponse(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	c.Abort()

	select {
	case err := <-errCh:
		requireType[*errors.TransportError](t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Abort did not unblock ReceiveResponse")
	}

	require.Equal(t, StateClosed, c.State())
}

func TestDisconnectAndClose_BrokenPipe(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	require.NoError(t, serverSide.Close())

	c := New(nil)
	c.dial = func(context.Context, string, string) (net.Conn, error) {
		return clientSide, nil
	}

	require.NoError(t, c.Connect(context.Background()))

	require.NotPanics(t, c.DisconnectAndClose)
	require.Equal(t, StateClosed, c.State())

	// Idempotent.
	require.NotPanics(t, c.DisconnectAndClose)
	require.Equal(t, StateClosed, c.State())
}

func TestDisconnectAndClose_Unconnected(t *testing.T) {
	c := New(nil)

	c.DisconnectAndClose()
	require.Equal(t, StateClosed, c.State())
}

func TestSendQuery_WriteFailure(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	require.NoError(t, serverSide.Close())

	c := New(nil)
	c.dial = func(context.Context, string, string) (net.Conn, error) {
		return clientSide, nil
	}

	defer c.DisconnectAndClose()

	require.NoError(t, c.Connect(context.Background()))

	err := c.SendQuery(context.Background(), "q", "")
	transportErr := requireType[*errors.TransportError](t, err)
	require.Equal(t, "write", transportErr.Op)

	// The one normal request was spent.
	err = c.SendQuery(context.Background(), "q", "")
	requireType[*errors.InvalidStateError](t, err)
}

func TestOperationsAfterClose(t *testing.T) {
	dials := 0

	c := New(nil)
	c.dial = func(context.Context, string, string) (net.Conn, error) {
		dials++

		return nil, stderrors.New("must not dial")
	}

	c.DisconnectAndClose()

	ctx := context.Background()

	for name, op := range map[string]func() error{
		"connect":    func() error { return c.Connect(ctx) },
		"send query": func() error { return c.SendQuery(ctx, "q", "") },
		"receive": func() error {
			_, err := c.ReceiveResponse(ctx)

			return err
		},
		"connect with retry": func() error { return c.ConnectWithRetry(ctx, RetryPolicy{Timeout: time.Second}) },
	} {
		t.Run(name, func(t *testing.T) {
			err := op()
			stateErr := requireType[*errors.InvalidStateError](t, err)
			assert.Equal(t, "closed", stateErr.State)
			assert.ErrorIs(t, err, errors.ErrSessionClosed)
		})
	}

	require.Zero(t, dials, "closed sessions never attempt I/O")
}

func TestOperationsOutOfOrder(t *testing.T) {
	addr, _ := startResponder(t, responder.Canned("ok"))

	ctx := context.Background()
	c := newClientFor(t, addr, nil)

	defer c.DisconnectAndClose()

	// Nothing before connect.
	requireType[*errors.InvalidStateError](t, c.SendQuery(ctx, "q", ""))

	_, err := c.ReceiveResponse(ctx)
	requireType[*errors.InvalidStateError](t, err)

	require.NoError(t, c.Connect(ctx))

	// No double connect, no receive before a query.
	requireType[*errors.InvalidStateError](t, c.Connect(ctx))

	_, err = c.ReceiveResponse(ctx)
	requireType[*errors.InvalidStateError](t, err)

	require.NoError(t, c.SendQuery(ctx, "q", ""))

	// No second query while awaiting or after the reply.
	requireType[*errors.InvalidStateError](t, c.SendQuery(ctx, "again", ""))

	resp, err := c.ReceiveResponse(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", resp)

	requireType[*errors.InvalidStateError](t, c.SendQuery(ctx, "again", ""))
}

func TestState_String(t *testing.T) {
	require.Equal(t, "unconnected", StateUnconnected.String())
	require.Equal(t, "connected", StateConnected.String())
	require.Equal(t, "awaiting_response", StateAwaitingResponse.String())
	require.Equal(t, "closed", StateClosed.String())
	require.Equal(t, "unknown", State(42).String())
}
