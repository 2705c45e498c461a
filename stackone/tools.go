package stackone

import (
	"context"
	"net/http"
	"net/url"
	"path"

	"github.com/effective-security/xlog"
)

// ToolDefinition describes one remote StackOne action: its name, description
// and the JSON schema of its arguments. The schema is owned by the catalog and
// passed through untouched.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Tools is a collection of tool definitions in catalog order.
type Tools []*ToolDefinition

// Get returns the tool definition with the given name, or nil.
func (ts Tools) Get(name string) *ToolDefinition {
	for _, t := range ts {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Names returns the tool names in catalog order.
func (ts Tools) Names() []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return names
}

// Match filters the collection by exact names or glob patterns,
// e.g. "hris_*".
func (ts Tools) Match(patterns ...string) Tools {
	if len(patterns) == 0 {
		return ts
	}
	var res Tools
	for _, t := range ts {
		if matchesAny(t.Name, patterns) {
			res = append(res, t)
		}
	}
	return res
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

type toolsResponse struct {
	Tools []*ToolDefinition `json:"tools"`
}

// FetchTools lists the tools available to the account. Optional actions are
// exact names or glob patterns; they are passed to the catalog and also
// applied locally, as older API versions returned the full list regardless.
// An empty result is not an error.
func (c *Client) FetchTools(ctx context.Context, actions ...string) (Tools, error) {
	p := "/ai/tools"
	if len(actions) > 0 {
		q := url.Values{}
		for _, a := range actions {
			q.Add("actions", a)
		}
		p += "?" + q.Encode()
	}

	var res toolsResponse
	if err := c.do(ctx, http.MethodGet, p, nil, &res); err != nil {
		return nil, err
	}

	tools := Tools(res.Tools).Match(actions...)

	logger.KV(xlog.DEBUG,
		"status", "fetched_tools",
		"count", len(tools))

	return tools, nil
}
