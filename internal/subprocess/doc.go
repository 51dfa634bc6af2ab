// Package subprocess launches the responder as a child process.
//
// The Launcher resolves the responder command, redirects the child's merged
// stdout and stderr into a log file, and returns as soon as the child is
// running. When an output sink is configured the merged stream is also
// delivered to it line by line while the child runs.
//
// The child is not tied to the launch context and is never signalled on the
// normal path: the responder exits on its own after it reads the disconnect
// frame. Process.Kill exists for callers that give up waiting.
package subprocess
