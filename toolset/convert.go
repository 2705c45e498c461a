package toolset

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/effective-security/stackone/tools"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/responses"
)

// asParameters normalizes a tool parameters definition to a generic map.
// Remote tools already carry map schemas; meta tools carry reflected
// jsonschema values, which are round tripped through JSON.
func asParameters(params any) map[string]any {
	if m, ok := params.(map[string]any); ok {
		return m
	}
	bs, err := json.Marshal(params)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(bs, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	return m
}

// ToOpenAITools converts the tools to OpenAI Responses API function tool
// params.
func ToOpenAITools(list []tools.ITool) []responses.ToolUnionParam {
	if len(list) == 0 {
		return nil
	}
	res := make([]responses.ToolUnionParam, len(list))
	for i, t := range list {
		res[i] = responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name(),
				Description: param.NewOpt(t.Description()),
				Parameters:  asParameters(t.Parameters()),
			},
		}
	}
	return res
}

// ToAnthropicTools converts the tools to Anthropic SDK tool params.
func ToAnthropicTools(list []tools.ITool) []anthropic.ToolUnionParam {
	if len(list) == 0 {
		return nil
	}
	res := make([]anthropic.ToolUnionParam, len(list))
	for i, t := range list {
		m := asParameters(t.Parameters())

		var properties map[string]any
		if props, ok := m["properties"].(map[string]any); ok {
			properties = props
		}
		var required []string
		switch req := m["required"].(type) {
		case []string:
			required = req
		case []any:
			for _, r := range req {
				if name, ok := r.(string); ok {
					required = append(required, name)
				}
			}
		}

		inputSchema := anthropic.ToolInputSchemaParam{
			Type:       "object",
			Properties: properties,
		}
		if len(required) > 0 {
			inputSchema.Required = required
		}

		res[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name(),
				Description: anthropic.String(t.Description()),
				InputSchema: inputSchema,
			},
		}
	}
	return res
}
