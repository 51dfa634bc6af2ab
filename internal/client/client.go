package client

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/instinct/askgpt/internal/config"
	"github.com/instinct/askgpt/internal/errors"
	"github.com/instinct/askgpt/internal/protocol"
)

const (
	// maxFrameSize is the maximum size of a response line.
	maxFrameSize = 1024 * 1024 // 1MB

	// disconnectNoticeTimeout bounds the courtesy write during teardown.
	disconnectNoticeTimeout = time.Second
)

// expired is a deadline in the past, used to unblock pending I/O.
var expired = time.Unix(1, 0)

// dialFunc matches net.Dialer.DialContext.
type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Client is a single-use TCP session with the responder.
type Client struct {
	log         *slog.Logger
	id          string
	addr        string
	readTimeout time.Duration
	dial        dialFunc

	mu      sync.Mutex // Protects the fields below
	state   State
	queried bool // Whether the one normal request has been attempted
	conn    net.Conn
	scanner *bufio.Scanner
}

// New creates an unconnected session for the address in options.
//
// The client is not connected after creation. Call Connect or
// ConnectWithRetry to dial the responder.
func New(options *config.Options) *Client {
	options = options.WithDefaults()

	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	id := ulid.Make().String()
	dialer := &net.Dialer{Timeout: options.DialTimeout}

	return &Client{
		log:         log.With("component", "session", "session_id", id),
		id:          id,
		addr:        options.Addr(),
		readTimeout: options.ReadTimeout,
		dial:        dialer.DialContext,
	}
}

// ID returns the session identifier used in log records.
func (c *Client) ID() string {
	return c.id
}

// Addr returns the responder address this session dials.
func (c *Client) Addr() string {
	return c.addr
}

// State returns the current lifecycle state.
// This method is safe to call from any goroutine.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// invalidState builds the error for an operation attempted in the wrong state.
// Caller must hold c.mu.
func (c *Client) invalidState(op string) error {
	err := &errors.InvalidStateError{Op: op, State: c.state.String()}
	if c.state == StateClosed {
		err.Err = errors.ErrSessionClosed
	}

	return err
}

// Connect dials the responder once.
//
// Returns ConnectionError if the responder is unreachable or refuses the
// connection. This is expected for a short while after a launch; use
// ConnectWithRetry to wait for the responder to come up.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUnconnected {
		err := c.invalidState("connect")
		c.mu.Unlock()

		return err
	}
	c.mu.Unlock()

	c.log.Debug("Dialing responder", "addr", c.addr)

	conn, err := c.dial(ctx, "tcp", c.addr)
	if err != nil {
		c.log.Debug("Dial failed", "addr", c.addr, "error", err)

		return &errors.ConnectionError{Addr: c.addr, Attempts: 1, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Abort may have closed the session while the dial was in flight.
	if c.state != StateUnconnected {
		_ = conn.Close()

		return c.invalidState("connect")
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameSize)

	c.conn = conn
	c.scanner = scanner
	c.state = StateConnected

	c.log.Info("Connected to responder", "addr", c.addr, "local_addr", conn.LocalAddr().String())

	return nil
}

// SendQuery writes the normal request frame for one question.
//
// Exactly one query may be sent per session. Returns InvalidStateError when
// the session is not connected, is closed, or already carried a query, and
// TransportError when the write fails.
func (c *Client) SendQuery(ctx context.Context, question, inventory string) error {
	c.mu.Lock()
	if c.state != StateConnected || c.queried {
		err := c.invalidState("send query")
		c.mu.Unlock()

		return err
	}

	c.queried = true
	conn := c.conn
	c.mu.Unlock()

	data, err := protocol.Encode(protocol.QueryRequest(question, inventory))
	if err != nil {
		return err
	}

	c.log.Debug("Sending query", "question_len", len(question), "inventory_len", len(inventory))

	if err := writeFrame(ctx, conn, data); err != nil {
		c.log.Error("Failed to send query", "error", err)

		return &errors.TransportError{Op: "write", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateConnected {
		c.state = StateAwaitingResponse
	}

	return nil
}

// ReceiveResponse blocks until the responder sends one response line and
// returns its response text.
//
// Returns ProtocolError if the peer closed without replying or the line is
// not a valid response frame, and TransportError if the read fails, times
// out, is aborted, or the context ends first.
func (c *Client) ReceiveResponse(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state != StateAwaitingResponse {
		err := c.invalidState("receive response")
		c.mu.Unlock()

		return "", err
	}

	conn := c.conn
	scanner := c.scanner
	c.mu.Unlock()

	if c.readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	// Cancellation pushes the deadline into the past, which unblocks Scan.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(expired)
	})
	defer stop()

	c.log.Debug("Waiting for response")

	ok := scanner.Scan()

	c.mu.Lock()
	if c.state == StateAwaitingResponse {
		c.state = StateConnected
	}
	aborted := c.state == StateClosed
	c.mu.Unlock()

	if !ok {
		err := scanner.Err()

		switch {
		case err == nil && !aborted:
			c.log.Warn("Responder closed the connection without replying")

			return "", &errors.ProtocolError{Err: errors.ErrPeerClosed}
		case stderrors.Is(err, bufio.ErrTooLong):
			return "", &errors.ProtocolError{Err: fmt.Errorf("response exceeds %d bytes: %w", maxFrameSize, err)}
		case err == nil:
			err = net.ErrClosed
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			err = stderrors.Join(ctxErr, err)
		}

		c.log.Error("Failed to read response", "error", err)

		return "", &errors.TransportError{Op: "read", Err: err}
	}

	line := scanner.Bytes()

	resp, err := protocol.DecodeResponse(line)
	if err != nil {
		c.log.Error("Invalid response frame", "error", err)

		return "", err
	}

	c.log.Debug("Received response", "response_len", len(resp))

	return resp, nil
}

// DisconnectAndClose sends the terminal frame and closes the connection.
//
// The terminal frame is best effort: write failures are logged and
// swallowed because the connection is being discarded either way. The
// session always ends in StateClosed. Safe to call multiple times.
func (c *Client) DisconnectAndClose() {
	conn := c.shutdown()
	if conn == nil {
		return
	}

	data, err := protocol.Encode(protocol.DisconnectRequest())
	if err == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(disconnectNoticeTimeout))
		_, err = conn.Write(data)
	}

	if err != nil {
		c.log.Warn("Failed to send disconnect notice", "error", err)
	} else {
		c.log.Debug("Sent disconnect notice")
	}

	if err := conn.Close(); err != nil {
		c.log.Debug("Error closing connection", "error", err)
	}

	c.log.Info("Session closed")
}

// Abort closes the connection without the disconnect notice.
//
// It may be called from any goroutine; a ReceiveResponse blocked on the
// socket fails with TransportError. Safe to call multiple times.
func (c *Client) Abort() {
	conn := c.shutdown()
	if conn == nil {
		return
	}

	c.log.Info("Aborting session")

	_ = conn.Close()
}

// shutdown moves the session to StateClosed and hands the connection to
// exactly one caller.
func (c *Client) shutdown() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateClosed

	conn := c.conn
	c.conn = nil

	return conn
}

// writeFrame writes data honoring context cancellation and deadline.
func writeFrame(ctx context.Context, conn net.Conn, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetWriteDeadline(expired)
	})

	_, err := conn.Write(data)

	if stop() {
		_ = conn.SetWriteDeadline(time.Time{})
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stderrors.Join(ctxErr, err)
		}

		return err
	}

	return nil
}
