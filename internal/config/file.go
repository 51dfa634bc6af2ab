package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// File is the on-disk TOML configuration.
//
//	[responder]
//	script = "PythonScripts/server.py"
//	interpreter = "python"
//	log = "PythonScripts/log.txt"
//
//	[connection]
//	port = 8080
//	ready_timeout = "10s"
//
//	[chat]
//	trigger = "askGPT"
type File struct {
	Responder  ResponderSection  `toml:"responder"`
	Connection ConnectionSection `toml:"connection"`
	Chat       ChatSection       `toml:"chat"`
}

// ResponderSection configures how the responder is launched.
type ResponderSection struct {
	Script      string            `toml:"script"`
	Interpreter string            `toml:"interpreter"`
	Log         string            `toml:"log"`
	WorkDir     string            `toml:"workdir"`
	Env         map[string]string `toml:"env"`
	ExitGrace   time.Duration     `toml:"exit_grace"`
}

// ConnectionSection configures the TCP session.
type ConnectionSection struct {
	Host           string        `toml:"host"`
	Port           int           `toml:"port"`
	DialTimeout    time.Duration `toml:"dial_timeout"`
	ReadTimeout    time.Duration `toml:"read_timeout"`
	ReadyTimeout   time.Duration `toml:"ready_timeout"`
	InitialBackoff time.Duration `toml:"initial_backoff"`
	MaxBackoff     time.Duration `toml:"max_backoff"`
}

// ChatSection configures the chat-facing behavior.
type ChatSection struct {
	Trigger  string `toml:"trigger"`
	Fallback string `toml:"fallback"`
}

// LoadFile reads a TOML config file and applies environment overrides.
// A missing file is not an error; the environment and defaults still apply.
// Resolution order per field: $ASKGPT_* env > file value > default.
func LoadFile(path string) (*Options, error) {
	var f File

	if path != "" {
		if _, err := toml.DecodeFile(path, &f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	opts := f.Options()

	if err := applyEnv(opts); err != nil {
		return nil, err
	}

	return opts, nil
}

// Options converts the file sections into Options without defaults applied.
func (f *File) Options() *Options {
	return &Options{
		Host:           f.Connection.Host,
		Port:           f.Connection.Port,
		ScriptPath:     f.Responder.Script,
		Interpreter:    f.Responder.Interpreter,
		LogPath:        f.Responder.Log,
		WorkDir:        f.Responder.WorkDir,
		Env:            f.Responder.Env,
		DialTimeout:    f.Connection.DialTimeout,
		ReadTimeout:    f.Connection.ReadTimeout,
		ReadyTimeout:   f.Connection.ReadyTimeout,
		InitialBackoff: f.Connection.InitialBackoff,
		MaxBackoff:     f.Connection.MaxBackoff,
		ExitGrace:      f.Responder.ExitGrace,
		TriggerWord:    f.Chat.Trigger,
		FallbackReply:  f.Chat.Fallback,
	}
}

func applyEnv(opts *Options) error {
	if host := os.Getenv("ASKGPT_HOST"); host != "" {
		opts.Host = host
	}

	if port := os.Getenv("ASKGPT_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("invalid ASKGPT_PORT %q", port)
		}

		opts.Port = n
	}

	if script := os.Getenv("ASKGPT_SCRIPT"); script != "" {
		opts.ScriptPath = script
	}

	if interp := os.Getenv("ASKGPT_INTERPRETER"); interp != "" {
		opts.Interpreter = interp
	}

	return nil
}
