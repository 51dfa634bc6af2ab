package subprocess

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/instinct/askgpt/internal/cli"
	"github.com/instinct/askgpt/internal/config"
	"github.com/instinct/askgpt/internal/errors"
)

// maxLineSize is the maximum size of one responder output line delivered
// to the sink. Longer lines reach the sink in pieces of about this size.
const maxLineSize = 1024 * 1024 // 1MB

// defaultLogName is the log file created next to the script when no log
// path is configured.
const defaultLogName = "log.txt"

// Launcher implements config.Launcher by spawning a child process.
type Launcher struct {
	log        *slog.Logger
	options    *config.Options
	discoverer cli.Discoverer
}

// Compile-time verification that Launcher implements the config.Launcher interface.
var _ config.Launcher = (*Launcher)(nil)

// NewLauncher creates a launcher for the given options.
//
// The logger is used for operation tracking and debugging. Responder
// discovery is deferred to Launch.
func NewLauncher(log *slog.Logger, options *config.Options) *Launcher {
	options = options.WithDefaults()

	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log = log.With("component", "launcher")

	return &Launcher{
		log:     log,
		options: options,
		discoverer: cli.NewDiscoverer(&cli.Config{
			Interpreter: options.Interpreter,
			Logger:      log,
		}),
	}
}

// Launch starts the responder and returns once the child is spawned.
//
// The merged stdout and stderr of the child are written to logPath, which
// is created or truncated. An empty logPath selects log.txt next to the
// script. Returns LaunchError if the command cannot be resolved, the log
// file cannot be created, or the process fails to start.
func (l *Launcher) Launch(ctx context.Context, scriptPath, logPath string) (config.Process, error) {
	l.log.Info("Launching responder", "script", scriptPath)

	command, err := l.discoverer.Discover(ctx, scriptPath)
	if err != nil {
		return nil, fmt.Errorf("discover responder: %w", err)
	}

	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(scriptPath), defaultLogName)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, &errors.LaunchError{Path: command.Path, Err: fmt.Errorf("create log directory: %w", err)}
	}

	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, &errors.LaunchError{Path: command.Path, Err: fmt.Errorf("create log file: %w", err)}
	}

	// Deliberately not CommandContext: the responder must outlive the
	// launch call and exit on the disconnect frame.
	//nolint:gosec // G204: the responder command is operator configuration
	cmd := exec.Command(command.Path, command.Args...)
	cmd.Dir = l.options.WorkDir
	cmd.Env = cli.BuildEnvironment(l.options)

	proc := &Process{
		log:     l.log,
		cmd:     cmd,
		logPath: logPath,
		done:    make(chan struct{}),
	}

	if l.options.OutputSink == nil {
		cmd.Stdout = logFile
		cmd.Stderr = logFile

		if err := cmd.Start(); err != nil {
			_ = logFile.Close()

			l.log.Error("Failed to start responder", "error", err)

			return nil, &errors.LaunchError{Path: command.Path, Err: fmt.Errorf("start process: %w", err)}
		}

		// The child holds its own descriptor.
		_ = logFile.Close()

		go proc.supervise(nil)
	} else {
		reader, writer, err := os.Pipe()
		if err != nil {
			_ = logFile.Close()

			return nil, &errors.LaunchError{Path: command.Path, Err: fmt.Errorf("output pipe: %w", err)}
		}

		cmd.Stdout = writer
		cmd.Stderr = writer

		if err := cmd.Start(); err != nil {
			_ = reader.Close()
			_ = writer.Close()
			_ = logFile.Close()

			l.log.Error("Failed to start responder", "error", err)

			return nil, &errors.LaunchError{Path: command.Path, Err: fmt.Errorf("start process: %w", err)}
		}

		// Only the child may hold the write end, or the drain never sees EOF.
		_ = writer.Close()

		sink := l.options.OutputSink

		go proc.supervise(func() error {
			defer reader.Close()
			defer logFile.Close()

			return drain(reader, logFile, sink)
		})
	}

	l.log.Info("Responder started", "pid", cmd.Process.Pid, "log", logPath)

	return proc, nil
}

// drain copies the child's output verbatim into the log file and hands it
// to the sink one line at a time.
//
// The pipe is always read to EOF, even after a log write fails, so the
// child never blocks on a full pipe or dies of EPIPE.
func drain(r io.Reader, logFile io.Writer, sink func(string)) error {
	reader := bufio.NewReader(io.TeeReader(r, logFile))

	var pending []byte

	for {
		chunk, err := reader.ReadSlice('\n')
		pending = append(pending, chunk...)

		switch {
		case err == nil:
			sink(string(bytes.TrimSuffix(bytes.TrimSuffix(pending, []byte("\n")), []byte("\r"))))
			pending = pending[:0]
		case stderrors.Is(err, bufio.ErrBufferFull):
			if len(pending) >= maxLineSize {
				sink(string(pending))
				pending = pending[:0]
			}
		default:
			if len(pending) > 0 {
				sink(string(pending))
			}

			if stderrors.Is(err, io.EOF) || stderrors.Is(err, os.ErrClosed) {
				return nil
			}

			_, _ = io.Copy(io.Discard, r)

			return fmt.Errorf("drain output: %w", err)
		}
	}
}

// Process is a launched responder.
type Process struct {
	log     *slog.Logger
	cmd     *exec.Cmd
	logPath string
	done    chan struct{}

	mu      sync.Mutex // Protects the fields below
	waitErr error
	exited  bool
}

// Compile-time verification that Process implements the config.Process interface.
var _ config.Process = (*Process)(nil)

// supervise waits for the child and, when set, the output drain, then
// records the exit status and closes done.
func (p *Process) supervise(drainOutput func() error) {
	var (
		g       errgroup.Group
		waitErr error
	)

	if drainOutput != nil {
		g.Go(drainOutput)
	}

	g.Go(func() error {
		waitErr = p.cmd.Wait()

		return nil
	})

	if err := g.Wait(); err != nil {
		p.log.Warn("Responder output drain failed", "error", err)
	}

	p.mu.Lock()
	p.waitErr = waitErr
	p.exited = true
	p.mu.Unlock()

	if waitErr != nil {
		p.log.Info("Responder exited with error", "pid", p.Pid(), "error", waitErr)
	} else {
		p.log.Info("Responder exited", "pid", p.Pid())
	}

	close(p.done)
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// LogPath returns the file receiving the responder output.
func (p *Process) LogPath() string {
	return p.logPath
}

// Done is closed once the process has exited and its output is drained.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits or the context ends.
//
// Returns the context error if the context ends first, or a wrapped
// *exec.ExitError if the responder exited unsuccessfully.
func (p *Process) Wait(ctx context.Context) error {
	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.waitErr != nil {
		return fmt.Errorf("responder (pid %d) exited: %w", p.cmd.Process.Pid, p.waitErr)
	}

	return nil
}

// ExitCode returns the exit code, or -1 while the process is running.
func (p *Process) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.exited {
		return -1
	}

	return p.cmd.ProcessState.ExitCode()
}

// Kill forcefully terminates the process. Safe to call on an exited process.
func (p *Process) Kill() error {
	p.mu.Lock()
	exited := p.exited
	p.mu.Unlock()

	if exited {
		return nil
	}

	p.log.Debug("Killing responder", "pid", p.Pid())

	if err := p.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill responder (pid %d): %w", p.Pid(), err)
	}

	return nil
}
