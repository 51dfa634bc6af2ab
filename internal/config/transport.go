// Package config provides configuration types for the askgpt bridge.
package config

import "context"

// Launcher starts the responder process for one question.
// Implement this to provide custom launchers for testing or for responders
// managed outside this process.
//
// The default implementation is subprocess.Launcher which spawns a child
// process. Custom launchers can be injected via Options.Launcher.
type Launcher interface {
	// Launch spawns the responder and returns as soon as it is running.
	// Readiness to accept connections is the caller's concern.
	Launch(ctx context.Context, scriptPath, logPath string) (Process, error)
}

// Process is a handle to a launched responder.
type Process interface {
	// Pid returns the operating system process id.
	Pid() int

	// Done is closed once the process has exited and its output is drained.
	Done() <-chan struct{}

	// Wait blocks until the process exits or the context ends.
	Wait(ctx context.Context) error

	// Kill forcefully terminates the process. Safe on an exited process.
	Kill() error
}
