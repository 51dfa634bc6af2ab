package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskToolName is the name of the registered tool.
const AskToolName = "ask"

// defaultInventory is sent when the caller gives no inventory summary.
const defaultInventory = "Empty Inventory"

// Questioner answers one question with an inventory summary.
type Questioner interface {
	Ask(ctx context.Context, question, inventory string) (string, error)
}

// NewServer creates an MCP server with the ask tool registered.
func NewServer(q Questioner, version string, log *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "askgpt", Version: version}, nil)
	server.AddTool(
		&mcp.Tool{
			Name:        AskToolName,
			Description: "Ask the game assistant a question about the player's situation.",
			InputSchema: AskSchema(),
		},
		AskHandler(q, log),
	)

	return server
}

// Serve runs the server over stdin and stdout until the client disconnects
// or ctx ends.
func Serve(ctx context.Context, server *mcp.Server) error {
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("serve mcp: %w", err)
	}

	return nil
}

// AskSchema is the input schema of the ask tool.
func AskSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"question": {
				Type:        "string",
				Description: "The question to ask.",
			},
			"inventory": {
				Type:        "string",
				Description: "Inventory summary such as \"Player's inventory: stone:3,dirt:64,\".",
			},
		},
		Required: []string{"question"},
	}
}

// AskHandler returns the tool handler that forwards a call to q.
//
// Failures are reported as error results so the calling model sees them.
func AskHandler(q Questioner, log *slog.Logger) mcp.ToolHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log = log.With("component", "mcp")

	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseAskArgs(req)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		question := args.Question
		if strings.TrimSpace(question) == "" {
			return errorResult("question is required"), nil
		}

		inventory := args.Inventory
		if inventory == "" {
			inventory = defaultInventory
		}

		log.Debug("Tool call", "tool", AskToolName, "question", question)

		answer, err := q.Ask(ctx, question, inventory)
		if err != nil {
			log.Error("Ask failed", "error", err)

			return errorResult("ask failed: " + err.Error()), nil
		}

		return textResult(answer), nil
	}
}

// askArgs are the arguments of the ask tool.
type askArgs struct {
	Question  string `json:"question"`
	Inventory string `json:"inventory"`
}

func parseAskArgs(req *mcp.CallToolRequest) (askArgs, error) {
	var args askArgs

	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return args, nil
	}

	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}

	return args, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

// errorResult reports a failure to the calling model as tool output.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: message}}, IsError: true}
}
