// Package cli resolves how the responder process is invoked.
//
// # Discovery
//
// The Discoverer interface turns the configured script and optional
// interpreter into an executable command:
//
//	discoverer := cli.NewDiscoverer(&cli.Config{
//	    Interpreter: "python",
//	    Logger:      slog.Default(),
//	})
//	cmd, err := discoverer.Discover(ctx, "PythonScripts/server.py")
//
// The interpreter is a shell-style command line ("uv run python",
// "'/opt/my python/bin/python3' -u") split with POSIX quoting rules. Its
// first word is searched in PATH; the legacy name "python" falls back to
// "python3". Without an interpreter the script itself must be executable.
//
// # Environment
//
// BuildEnvironment layers Options.Env over the current environment.
package cli
