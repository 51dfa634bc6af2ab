package cli

import (
	"fmt"
	"os"

	"github.com/instinct/askgpt/internal/config"
)

// BuildEnvironment returns the responder environment: the current
// environment plus bridge variables and Options.Env, later entries winning.
func BuildEnvironment(options *config.Options) []string {
	env := os.Environ()

	// Tell the responder where to listen.
	env = append(env,
		fmt.Sprintf("ASKGPT_HOST=%s", options.Host),
		fmt.Sprintf("ASKGPT_PORT=%d", options.Port),
	)

	for key, value := range options.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}
