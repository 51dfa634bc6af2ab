// Package client implements the TCP session between the bridge and the
// responder process.
//
// A Client owns exactly one connection and walks it through a fixed
// lifecycle:
//
//	Unconnected -> Connected -> AwaitingResponse -> Connected -> Closed
//
// Connect (or ConnectWithRetry right after a launch) dials the responder,
// SendQuery writes the single normal request frame, ReceiveResponse blocks
// for the single response frame, and DisconnectAndClose sends the terminal
// frame as a courtesy and closes the socket. Closed is terminal: clients are
// single-use and every later operation fails with InvalidStateError.
//
// Abort may be called from any goroutine to force a blocked read to fail
// with TransportError.
package client
