package askgpt

import (
	"log/slog"
	"time"
)

// Option configures Options using the functional options pattern.
// This is the primary option type for configuring askers and sessions.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithOptions replaces the whole option set, e.g. with one loaded from a
// config file. Options applied after it still take effect.
func WithOptions(base *Options) Option {
	return func(o *Options) {
		if base != nil {
			*o = *base
		}
	}
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithHost sets the host the responder listens on. Defaults to localhost.
func WithHost(host string) Option {
	return func(o *Options) {
		o.Host = host
	}
}

// WithPort sets the responder TCP port. Defaults to 8080.
func WithPort(port int) Option {
	return func(o *Options) {
		o.Port = port
	}
}

// ===== Responder Process =====

// WithScriptPath sets the responder executable or script.
func WithScriptPath(path string) Option {
	return func(o *Options) {
		o.ScriptPath = path
	}
}

// WithInterpreter runs the script through an interpreter command such as
// "python" or "uv run python". If not set, the script is executed directly.
func WithInterpreter(interpreter string) Option {
	return func(o *Options) {
		o.Interpreter = interpreter
	}
}

// WithLogPath sets the file that receives the responder's merged output.
// Defaults to log.txt next to the script.
func WithLogPath(path string) Option {
	return func(o *Options) {
		o.LogPath = path
	}
}

// WithWorkDir sets the working directory for the responder process.
func WithWorkDir(dir string) Option {
	return func(o *Options) {
		o.WorkDir = dir
	}
}

// WithEnv sets additional environment variables for the responder process.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithOutputSink streams the responder's output line by line to fn in
// addition to the log file.
func WithOutputSink(fn func(line string)) Option {
	return func(o *Options) {
		o.OutputSink = fn
	}
}

// WithLauncher injects a custom responder launcher.
// This is primarily used for testing.
func WithLauncher(launcher Launcher) Option {
	return func(o *Options) {
		o.Launcher = launcher
	}
}

// WithExitGrace sets how long to wait for the responder to exit after the
// disconnect notice before killing it. A negative value disables waiting.
func WithExitGrace(d time.Duration) Option {
	return func(o *Options) {
		o.ExitGrace = d
	}
}

// ===== Connection =====

// WithDialTimeout bounds a single connect attempt.
func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.DialTimeout = d
	}
}

// WithReadTimeout bounds the wait for the response line.
// Zero waits until the responder replies, closes, or the context ends.
func WithReadTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ReadTimeout = d
	}
}

// WithReadyTimeout bounds how long to wait for a freshly launched responder
// to accept connections.
func WithReadyTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ReadyTimeout = d
	}
}

// WithBackoff sets the initial and maximum delay between readiness probes.
func WithBackoff(initial, maximum time.Duration) Option {
	return func(o *Options) {
		o.InitialBackoff = initial
		o.MaxBackoff = maximum
	}
}

// ===== Chat =====

// WithTriggerWord sets the chat prefix that marks a question.
// Defaults to "askGPT".
func WithTriggerWord(word string) Option {
	return func(o *Options) {
		o.TriggerWord = word
	}
}

// WithFallbackReply sets the text shown to the player when a question fails.
func WithFallbackReply(text string) Option {
	return func(o *Options) {
		o.FallbackReply = text
	}
}
