package askgpt

import (
	"github.com/instinct/askgpt/internal/client"
	"github.com/instinct/askgpt/internal/config"
)

// Re-export types from internal packages

// Options configures the bridge.
type Options = config.Options

// Session is a single-use TCP session with the responder.
type Session = client.Client

// SessionState is the lifecycle state of a Session.
type SessionState = client.State

// Session lifecycle states.
const (
	StateUnconnected      = client.StateUnconnected
	StateConnected        = client.StateConnected
	StateAwaitingResponse = client.StateAwaitingResponse
	StateClosed           = client.StateClosed
)

// RetryPolicy bounds the readiness probe of Session.ConnectWithRetry.
type RetryPolicy = client.RetryPolicy

// PlayerContext is the game side of a chat question.
//
// The game client implements it for the player who sent the message.
type PlayerContext interface {
	// Inventory returns the player's inventory summary, e.g.
	// "Player's inventory: stone:3,dirt:64," or "Empty Inventory".
	Inventory() string

	// Reply shows text to the player.
	Reply(text string)
}
