package client

// State is the lifecycle state of a session.
type State int

const (
	// StateUnconnected is the state of a new client.
	StateUnconnected State = iota
	// StateConnected means the socket is open and no reply is pending.
	StateConnected
	// StateAwaitingResponse means a query was sent and its reply not yet read.
	StateAwaitingResponse
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnected:
		return "connected"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
