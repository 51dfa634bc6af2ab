package askgpt

import "github.com/instinct/askgpt/internal/errors"

// Re-export error types from internal package

// LaunchError indicates the responder could not be found or started.
type LaunchError = errors.LaunchError

// ConnectionError indicates the responder could not be reached.
type ConnectionError = errors.ConnectionError

// TransportError indicates a read or write on an open session failed.
type TransportError = errors.TransportError

// ProtocolError indicates the responder sent something that is not a response frame.
type ProtocolError = errors.ProtocolError

// InvalidStateError indicates a session operation was called out of order.
type InvalidStateError = errors.InvalidStateError

// AskGPTError is the base interface for all bridge errors.
type AskGPTError = errors.AskGPTError

// Re-export sentinel errors from internal package.
var (
	// ErrSessionClosed indicates the session has been closed and cannot be reused.
	ErrSessionClosed = errors.ErrSessionClosed

	// ErrResponderNotReady indicates the responder did not accept a
	// connection before the readiness deadline.
	ErrResponderNotReady = errors.ErrResponderNotReady

	// ErrPeerClosed indicates the responder closed the connection without replying.
	ErrPeerClosed = errors.ErrPeerClosed

	// ErrMissingResponse indicates a frame without a response field.
	ErrMissingResponse = errors.ErrMissingResponse
)
