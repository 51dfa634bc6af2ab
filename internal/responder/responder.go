// Package responder implements the server side of the question protocol.
//
// The production responder is an external process that prompts a language
// model. This package provides a Go implementation of the same wire
// behavior, answering through a pluggable Answerer, for local development
// (askgpt stub-responder) and for tests.
//
// Like the external responder, a Server accepts exactly one connection,
// answers each normal request frame with one response frame, and returns
// once it reads the terminal disconnect frame or the peer goes away.
package responder

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/instinct/askgpt/internal/protocol"
)

// maxFrameSize is the maximum size of a request line.
const maxFrameSize = 1024 * 1024 // 1MB

// Answerer produces the response text for one question.
type Answerer interface {
	Answer(ctx context.Context, req *protocol.Request) (string, error)
}

// AnswerFunc adapts a function to the Answerer interface.
type AnswerFunc func(ctx context.Context, req *protocol.Request) (string, error)

// Answer implements Answerer.
func (f AnswerFunc) Answer(ctx context.Context, req *protocol.Request) (string, error) {
	return f(ctx, req)
}

// Canned returns an Answerer that always replies with text.
func Canned(text string) Answerer {
	return AnswerFunc(func(context.Context, *protocol.Request) (string, error) {
		return text, nil
	})
}

// Server answers the questions of a single session.
type Server struct {
	log      *slog.Logger
	listener net.Listener
	answerer Answerer
}

// Listen binds a TCP listener on addr and returns a server for it.
func Listen(log *slog.Logger, addr string, answerer Answerer) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	return NewServer(log, listener, answerer), nil
}

// NewServer creates a server on an existing listener.
func NewServer(log *slog.Logger, listener net.Listener, answerer Answerer) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Server{
		log:      log.With("component", "responder"),
		listener: listener,
		answerer: answerer,
	}
}

// Addr returns the listening address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops listening. Safe to call after ServeOne returned.
func (s *Server) Close() error {
	if err := s.listener.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}

// ServeOne accepts one connection and serves it until the client sends the
// disconnect frame, the client goes away, or ctx ends. The listener is
// closed on return either way.
//
// A failing Answerer closes the connection without a reply.
func (s *Server) ServeOne(ctx context.Context) error {
	s.log.Info("Listening", "addr", s.listener.Addr().String())

	// Unblock Accept when the context ends.
	stopListen := context.AfterFunc(ctx, func() {
		_ = s.listener.Close()
	})
	defer stopListen()
	defer s.listener.Close()

	conn, err := s.listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	stopConn := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stopConn()

	s.log.Info("Accepted connection", "remote_addr", conn.RemoteAddr().String())

	err = s.serveConn(ctx, conn)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	return err
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) error {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if strings.TrimSpace(string(line)) == "" {
			continue
		}

		req, err := protocol.DecodeRequest(line)
		if err != nil {
			s.log.Warn("Invalid request frame", "error", err)

			return err
		}

		if req.Disconnect {
			s.log.Info("Connection closed by client request")

			return nil
		}

		s.log.Debug("Received question", "question", req.Question, "inventory", req.Inventory)

		answer, err := s.answerer.Answer(ctx, req)
		if err != nil {
			s.log.Error("Answerer failed", "error", err)

			return fmt.Errorf("answer: %w", err)
		}

		data, err := protocol.Encode(&protocol.Response{Response: answer})
		if err != nil {
			return err
		}

		if _, err := conn.Write(data); err != nil {
			return fmt.Errorf("write response: %w", err)
		}

		s.log.Debug("Sent response", "response_len", len(answer))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}

	s.log.Info("Client went away without disconnect notice")

	return nil
}
