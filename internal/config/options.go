package config

import (
	"log/slog"
	"net"
	"strconv"
	"time"
)

const (
	// DefaultHost is the responder host; the responder only listens locally.
	DefaultHost = "localhost"

	// DefaultPort is the port the responder listens on by convention.
	DefaultPort = 8080

	// DefaultTriggerWord marks a chat message as a question for the responder.
	DefaultTriggerWord = "askGPT"

	// DefaultFallbackReply is shown to the player when anything goes wrong.
	DefaultFallbackReply = "Cannot connect to ChatGPT!"

	// DefaultDialTimeout bounds a single connect attempt.
	DefaultDialTimeout = 2 * time.Second

	// DefaultReadyTimeout bounds the whole readiness probe after a launch.
	DefaultReadyTimeout = 10 * time.Second

	// DefaultInitialBackoff is the first delay between connect attempts.
	DefaultInitialBackoff = 100 * time.Millisecond

	// DefaultMaxBackoff caps the delay between connect attempts.
	DefaultMaxBackoff = time.Second

	// DefaultExitGrace is how long the responder gets to exit after the
	// disconnect notice before it is killed.
	DefaultExitGrace = 5 * time.Second
)

// Options configures the bridge between the player and the responder.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Host is the responder host. Defaults to DefaultHost.
	Host string

	// Port is the responder TCP port. Defaults to DefaultPort.
	Port int

	// ScriptPath is the responder executable or script.
	ScriptPath string

	// Interpreter runs ScriptPath when set, e.g. "python" or "uv run python".
	// It is split into arguments with shell quoting rules.
	// If empty, ScriptPath is executed directly.
	Interpreter string

	// LogPath receives the responder's merged stdout and stderr.
	// Defaults to "log.txt" next to ScriptPath.
	LogPath string

	// WorkDir sets the working directory for the responder process.
	// If empty, the current directory is inherited.
	WorkDir string

	// Env provides additional environment variables for the responder process.
	Env map[string]string

	// DialTimeout bounds a single connect attempt.
	DialTimeout time.Duration

	// ReadTimeout bounds the wait for a response line.
	// Zero means wait until the peer replies, closes, or the context ends.
	ReadTimeout time.Duration

	// ReadyTimeout bounds the readiness probe that follows a launch.
	ReadyTimeout time.Duration

	// InitialBackoff and MaxBackoff shape the delay between connect attempts.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// ExitGrace is how long the responder may take to exit after the
	// disconnect notice. Negative disables waiting entirely.
	ExitGrace time.Duration

	// TriggerWord is the leading token that marks a chat message as a question.
	TriggerWord string

	// FallbackReply is delivered to the player when the question fails.
	FallbackReply string

	// OutputSink receives responder output line by line while it runs.
	// The log file is written either way.
	OutputSink func(line string)

	// Launcher allows injecting a custom launcher implementation.
	// If nil, the subprocess launcher is used.
	Launcher Launcher `json:"-"`
}

// WithDefaults returns a copy of the options with zero values replaced by
// their defaults. A nil receiver yields the full default set.
func (o *Options) WithDefaults() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}

	if out.Host == "" {
		out.Host = DefaultHost
	}

	if out.Port == 0 {
		out.Port = DefaultPort
	}

	if out.DialTimeout == 0 {
		out.DialTimeout = DefaultDialTimeout
	}

	if out.ReadyTimeout == 0 {
		out.ReadyTimeout = DefaultReadyTimeout
	}

	if out.InitialBackoff == 0 {
		out.InitialBackoff = DefaultInitialBackoff
	}

	if out.MaxBackoff == 0 {
		out.MaxBackoff = DefaultMaxBackoff
	}

	if out.MaxBackoff < out.InitialBackoff {
		out.MaxBackoff = out.InitialBackoff
	}

	if out.ExitGrace == 0 {
		out.ExitGrace = DefaultExitGrace
	}

	if out.TriggerWord == "" {
		out.TriggerWord = DefaultTriggerWord
	}

	if out.FallbackReply == "" {
		out.FallbackReply = DefaultFallbackReply
	}

	return &out
}

// Addr returns the host:port the session dials.
func (o *Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}
