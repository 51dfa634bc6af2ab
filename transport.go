package askgpt

import "github.com/instinct/askgpt/internal/config"

// Launcher starts the responder process for one question.
// Implement this to run the responder somewhere other than a local child
// process, or to fake it in tests.
//
// The default implementation spawns the configured script and redirects its
// merged output into a log file. Custom launchers can be injected via
// WithLauncher.
type Launcher = config.Launcher

// Process is a running responder returned by a Launcher.
type Process = config.Process
