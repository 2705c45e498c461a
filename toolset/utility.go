package toolset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/stackone/llmutils"
	"github.com/effective-security/stackone/schema"
	"github.com/effective-security/stackone/stackone"
	"github.com/effective-security/stackone/tools"
)

const (
	// SearchToolName is the meta tool for natural language tool discovery.
	SearchToolName = "tool_search"
	// ExecuteToolName is the meta tool for executing a discovered tool by name.
	ExecuteToolName = "tool_execute"
)

// SearchRequest represents the tool_search input.
type SearchRequest struct {
	Query string `json:"query" jsonschema:"title=Query,description=Natural language description of the task to find tools for."`
	Limit int    `json:"limit,omitempty" jsonschema:"title=Limit,description=Maximum number of tools to return."`
}

// SearchResult represents the ranked matches from the catalog.
type SearchResult struct {
	Hits []stackone.SearchHit `json:"hits" jsonschema:"title=hits,description=Tools matching the query ranked best first."`
}

func (r *SearchResult) String() string {
	var buf bytes.Buffer
	for _, hit := range r.Hits {
		fmt.Fprintf(&buf, "- NAME: %s\n", hit.Name)
		fmt.Fprintf(&buf, "  SCORE: %f\n", hit.Score)
		fmt.Fprintf(&buf, "  DESCRIPTION: %s\n", hit.Description)
	}
	return buf.String()
}

// SearchTool proxies natural language queries to the catalog's hybrid search.
type SearchTool struct {
	client      *stackone.Client
	hybridAlpha *float64
	funcParams  any
}

var _ tools.Tool[SearchRequest, SearchResult] = (*SearchTool)(nil)

// NewSearchTool returns the tool_search meta tool. hybridAlpha tunes the
// BM25/TF-IDF blend, nil keeps the server default.
func NewSearchTool(client *stackone.Client, hybridAlpha *float64) (*SearchTool, error) {
	sc, err := schema.New(reflect.TypeOf(SearchRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &SearchTool{
		client:      client,
		hybridAlpha: hybridAlpha,
		funcParams:  sc.Parameters,
	}, nil
}

func (t *SearchTool) Name() string {
	return SearchToolName
}

func (t *SearchTool) Description() string {
	return "Search for relevant StackOne tools using a natural language query."
}

func (t *SearchTool) Parameters() any {
	return t.funcParams
}

func (t *SearchTool) Run(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req.Query == "" {
		return nil, errors.New("invalid request: empty query")
	}

	hits, err := t.client.Search(ctx, &stackone.SearchRequest{
		Query:       req.Query,
		Limit:       req.Limit,
		HybridAlpha: t.hybridAlpha,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to search tools")
	}
	return &SearchResult{Hits: hits}, nil
}

func (t *SearchTool) Call(ctx context.Context, input string) (string, error) {
	var req SearchRequest
	if err := ljson.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", tools.ErrFailedUnmarshalInput
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}

// ExecuteRequest represents the tool_execute input.
type ExecuteRequest struct {
	Name      string         `json:"name" jsonschema:"title=Name,description=The name of the tool to execute."`
	Arguments map[string]any `json:"arguments,omitempty" jsonschema:"title=Arguments,description=Arguments matching the tool parameter schema."`
}

// ExecuteResult represents the raw connector response.
type ExecuteResult struct {
	Result json.RawMessage `json:"result" jsonschema:"title=result,description=The raw result of the executed tool."`
}

// ExecuteTool executes a discovered tool by name, bypassing static
// enumeration.
type ExecuteTool struct {
	client     *stackone.Client
	funcParams any
}

var _ tools.Tool[ExecuteRequest, ExecuteResult] = (*ExecuteTool)(nil)

// NewExecuteTool returns the tool_execute meta tool.
func NewExecuteTool(client *stackone.Client) (*ExecuteTool, error) {
	sc, err := schema.New(reflect.TypeOf(ExecuteRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &ExecuteTool{
		client:     client,
		funcParams: sc.Parameters,
	}, nil
}

func (t *ExecuteTool) Name() string {
	return ExecuteToolName
}

func (t *ExecuteTool) Description() string {
	return "Execute a StackOne tool by name with the given arguments."
}

func (t *ExecuteTool) Parameters() any {
	return t.funcParams
}

func (t *ExecuteTool) Run(ctx context.Context, req *ExecuteRequest) (*ExecuteResult, error) {
	if req.Name == "" {
		return nil, errors.New("invalid request: empty tool name")
	}

	res, err := t.client.Execute(ctx, req.Name, req.Arguments)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute tool %q", req.Name)
	}
	return &ExecuteResult{Result: res}, nil
}

func (t *ExecuteTool) Call(ctx context.Context, input string) (string, error) {
	var req ExecuteRequest
	if err := ljson.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", tools.ErrFailedUnmarshalInput
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return string(out.Result), nil
}
