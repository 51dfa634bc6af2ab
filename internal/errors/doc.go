// Package errors defines error types for the askgpt bridge.
//
// This package provides structured error types for each way a question can
// fail on its way to the responder and back: launching the responder,
// connecting to it, moving bytes over the socket, decoding frames, and
// using a session in the wrong lifecycle state. All error types support
// error unwrapping and can be checked using errors.Is, errors.As, and
// errors.AsType.
package errors
