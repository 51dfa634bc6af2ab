package errors

import (
	"errors"
	"fmt"
)

// AskGPTError is the base interface for all bridge errors.
type AskGPTError interface {
	error
	IsAskGPTError() bool
}

// Compile-time verification that all error types implement AskGPTError.
var (
	_ AskGPTError = (*LaunchError)(nil)
	_ AskGPTError = (*ConnectionError)(nil)
	_ AskGPTError = (*TransportError)(nil)
	_ AskGPTError = (*ProtocolError)(nil)
	_ AskGPTError = (*InvalidStateError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrSessionClosed indicates the session has been closed and cannot be reused.
	ErrSessionClosed = errors.New("session closed: sessions are single-use, create a new one")

	// ErrResponderNotReady indicates the responder never accepted a connection
	// before the readiness deadline.
	ErrResponderNotReady = errors.New("responder not ready")

	// ErrPeerClosed indicates the responder closed the connection before replying.
	ErrPeerClosed = errors.New("peer closed connection without a response")

	// ErrMissingResponse indicates a frame decoded but carried no response field.
	ErrMissingResponse = errors.New("frame has no response field")
)

// LaunchError indicates the responder process could not be started.
type LaunchError struct {
	Path          string
	SearchedPaths []string
	Err           error
}

func (e *LaunchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("launch responder %s: %v", e.Path, e.Err)
	}

	return fmt.Sprintf("responder executable not found in: %v", e.SearchedPaths)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IsAskGPTError implements AskGPTError.
func (e *LaunchError) IsAskGPTError() bool { return true }

// ConnectionError indicates the TCP connect to the responder failed.
// Right after a launch this is expected and retryable.
type ConnectionError struct {
	Addr     string
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("connect to responder at %s (%d attempts): %v", e.Addr, e.Attempts, e.Err)
	}

	return fmt.Sprintf("connect to responder at %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsAskGPTError implements AskGPTError.
func (e *ConnectionError) IsAskGPTError() bool { return true }

// TransportError indicates a read or write failed on an established socket.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAskGPTError implements AskGPTError.
func (e *TransportError) IsAskGPTError() bool { return true }

// ProtocolError indicates received data is not a valid response frame.
// RawData preserves the offending line when there was one.
type ProtocolError struct {
	RawData string
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("invalid response frame: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsAskGPTError implements AskGPTError.
func (e *ProtocolError) IsAskGPTError() bool { return true }

// InvalidStateError indicates an operation was invoked in the wrong
// session lifecycle state.
type InvalidStateError struct {
	Op    string
	State string
	Err   error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s in state %s", e.Op, e.State)
}

func (e *InvalidStateError) Unwrap() error {
	return e.Err
}

// IsAskGPTError implements AskGPTError.
func (e *InvalidStateError) IsAskGPTError() bool { return true }
