package protocol

import (
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// ResponseSchema is the JSON schema of a response frame.
func ResponseSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"response": {Type: "string", Description: "Text shown to the player"},
		},
		Required: []string{"response"},
	}
}

// RequestSchema is the JSON schema of a request frame.
func RequestSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"question":   {Type: "string", Description: "Player question without the trigger word"},
			"inventory":  {Type: "string", Description: "Comma-joined name:count inventory summary"},
			"disconnect": {Type: "boolean", Description: "True on the terminal frame of a session"},
		},
		Required: []string{"disconnect"},
	}
}

var (
	responseSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
		return ResponseSchema().Resolve(nil)
	})
	requestSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
		return RequestSchema().Resolve(nil)
	})
)

func validate(resolve func() (*jsonschema.Resolved, error), instance map[string]any) error {
	resolved, err := resolve()
	if err != nil {
		return fmt.Errorf("resolve schema: %w", err)
	}

	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	return nil
}
