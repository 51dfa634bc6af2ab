package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"mvdan.cc/sh/v3/shell"

	"github.com/instinct/askgpt/internal/errors"
)

// interpreterFallbacks lists alternate names tried when an interpreter is
// not found in PATH.
var interpreterFallbacks = map[string][]string{
	"python": {"python3"},
}

// Config holds configuration for responder discovery.
type Config struct {
	// Interpreter is an optional command line that runs the script.
	// If empty, the script is executed directly.
	Interpreter string

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Command is a resolved responder invocation.
type Command struct {
	// Path is the absolute or PATH-resolved executable.
	Path string

	// Args are the arguments after Path.
	Args []string
}

// Discoverer locates the executable that runs the responder script.
type Discoverer interface {
	// Discover resolves the command for scriptPath.
	// Returns LaunchError if the interpreter or script cannot be found.
	Discover(ctx context.Context, scriptPath string) (*Command, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new responder discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover resolves the command for scriptPath.
func (d *discoverer) Discover(_ context.Context, scriptPath string) (*Command, error) {
	if scriptPath == "" {
		return nil, &errors.LaunchError{Err: fmt.Errorf("no responder script configured")}
	}

	if d.cfg.Interpreter == "" {
		d.log.Debug("Running responder script directly", "script", scriptPath)

		path, err := exec.LookPath(scriptPath)
		if err != nil {
			d.log.Debug("Responder script not executable", "script", scriptPath, "error", err)

			return nil, &errors.LaunchError{Path: scriptPath, SearchedPaths: []string{scriptPath}, Err: err}
		}

		return &Command{Path: path}, nil
	}

	words, err := shell.Fields(d.cfg.Interpreter, nil)
	if err != nil {
		return nil, &errors.LaunchError{
			Path: d.cfg.Interpreter,
			Err:  fmt.Errorf("parse interpreter command: %w", err),
		}
	}

	if len(words) == 0 {
		return nil, &errors.LaunchError{Path: d.cfg.Interpreter, Err: fmt.Errorf("empty interpreter command")}
	}

	interpreter, err := d.findInterpreter(words[0])
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(scriptPath); err != nil {
		d.log.Debug("Responder script not found", "script", scriptPath, "error", err)

		return nil, &errors.LaunchError{Path: scriptPath, SearchedPaths: []string{scriptPath}, Err: err}
	}

	script, err := filepath.Abs(scriptPath)
	if err != nil {
		return nil, &errors.LaunchError{Path: scriptPath, Err: err}
	}

	args := append(words[1:len(words):len(words)], script)

	d.log.Debug("Resolved responder command", "path", interpreter, "args", args)

	return &Command{Path: interpreter, Args: args}, nil
}

// findInterpreter searches PATH for name and then its fallbacks.
func (d *discoverer) findInterpreter(name string) (string, error) {
	candidates := append([]string{name}, interpreterFallbacks[name]...)
	searched := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		d.log.Debug("Searching for interpreter", "name", candidate)

		if path, err := exec.LookPath(candidate); err == nil {
			d.log.Debug("Found interpreter", "path", path)

			return path, nil
		}

		searched = append(searched, candidate)
	}

	d.log.Warn("Interpreter not found", "searched", searched)

	return "", &errors.LaunchError{SearchedPaths: searched}
}
