package mcp

import (
	"context"
	"errors"
	"sync"
	"testing"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type fakeQuestioner struct {
	mu        sync.Mutex
	questions []string
	inventory []string
	answer    string
	err       error
}

func (f *fakeQuestioner) Ask(_ context.Context, question, inventory string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.questions = append(f.questions, question)
	f.inventory = append(f.inventory, inventory)

	return f.answer, f.err
}

func callRequest(args string) *mcpgo.CallToolRequest {
	return &mcpgo.CallToolRequest{
		Params: &mcpgo.CallToolParamsRaw{
			Name:      AskToolName,
			Arguments: []byte(args),
		},
	}
}

func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()

	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcpgo.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])

	return text.Text
}

func TestAskHandler_ForwardsQuestion(t *testing.T) {
	q := &fakeQuestioner{answer: "Craft a furnace"}
	handler := AskHandler(q, nil)

	result, err := handler(context.Background(), callRequest(`{"question":"What next?","inventory":"Player's inventory: cobblestone:8,"}`))
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "Craft a furnace", resultText(t, result))
	require.Equal(t, []string{"What next?"}, q.questions)
	require.Equal(t, []string{"Player's inventory: cobblestone:8,"}, q.inventory)
}

func TestAskHandler_DefaultInventory(t *testing.T) {
	q := &fakeQuestioner{answer: "ok"}

	_, err := AskHandler(q, nil)(context.Background(), callRequest(`{"question":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, []string{"Empty Inventory"}, q.inventory)
}

func TestAskHandler_Errors(t *testing.T) {
	tests := []struct {
		name string
		args string
		err  error
		want string
	}{
		{name: "missing question", args: `{}`, want: "question is required"},
		{name: "blank question", args: `{"question":"  "}`, want: "question is required"},
		{name: "bad json", args: `{`, want: "invalid arguments"},
		{name: "question not a string", args: `{"question":42}`, want: "invalid arguments"},
		{name: "ask fails", args: `{"question":"hi"}`, err: errors.New("responder not ready"), want: "ask failed: responder not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuestioner{err: tt.err}

			result, err := AskHandler(q, nil)(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			require.True(t, result.IsError)
			require.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestParseAskArgs_Empty(t *testing.T) {
	args, err := parseAskArgs(nil)
	require.NoError(t, err)
	require.Equal(t, askArgs{}, args)

	args, err = parseAskArgs(&mcpgo.CallToolRequest{Params: &mcpgo.CallToolParamsRaw{}})
	require.NoError(t, err)
	require.Equal(t, askArgs{}, args)
}

func TestAskSchema(t *testing.T) {
	schema := AskSchema()

	require.Equal(t, "object", schema.Type)
	require.Equal(t, []string{"question"}, schema.Required)
	require.Contains(t, schema.Properties, "question")
	require.Contains(t, schema.Properties, "inventory")
}

func TestNewServer_CallOverTransport(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuestioner{answer: "4"}

	server := NewServer(q, "test", nil)
	serverTransport, clientTransport := mcpgo.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	defer serverSession.Close()

	client := mcpgo.NewClient(&mcpgo.Implementation{Name: "test-client", Version: "test"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	require.Equal(t, AskToolName, tools.Tools[0].Name)

	result, err := session.CallTool(ctx, &mcpgo.CallToolParams{
		Name:      AskToolName,
		Arguments: map[string]any{"question": "2+2?"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "4", resultText(t, result))
}
