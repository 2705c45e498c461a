package toolset

import (
	"context"
	"encoding/json"

	"github.com/bububa/ljson"
	"github.com/effective-security/stackone/llmutils"
	"github.com/effective-security/stackone/stackone"
	"github.com/effective-security/stackone/tools"
)

// Tool wraps one remote StackOne action as an agent callable tool. The name,
// description and parameter schema come from the catalog unchanged; Call
// proxies the model-provided arguments to the execute endpoint.
type Tool struct {
	def    *stackone.ToolDefinition
	client *stackone.Client
}

var _ tools.ITool = (*Tool)(nil)

// NewTool wraps a fetched tool definition.
func NewTool(client *stackone.Client, def *stackone.ToolDefinition) *Tool {
	return &Tool{
		def:    def,
		client: client,
	}
}

func (t *Tool) Name() string {
	return t.def.Name
}

func (t *Tool) Description() string {
	return t.def.Description
}

func (t *Tool) Parameters() any {
	return t.def.Parameters
}

// Definition returns the underlying catalog record.
func (t *Tool) Definition() *stackone.ToolDefinition {
	return t.def
}

// Execute runs the remote action with already parsed arguments.
func (t *Tool) Execute(ctx context.Context, arguments map[string]any) (json.RawMessage, error) {
	return t.client.Execute(ctx, t.def.Name, arguments)
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var args map[string]any
	if input != "" {
		if err := ljson.Unmarshal(llmutils.CleanJSON([]byte(input)), &args); err != nil {
			return "", tools.ErrFailedUnmarshalInput
		}
	}
	res, err := t.Execute(ctx, args)
	if err != nil {
		return "", err
	}
	return string(res), nil
}
