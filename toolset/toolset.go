// Package toolset exposes the StackOne connector catalog as agent callable
// tools: each remote action becomes a local descriptor with the catalog name,
// description and JSON parameter schema, plus a callback that dispatches the
// model's arguments to the execute endpoint.
package toolset

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stackone/stackone"
	"github.com/effective-security/stackone/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/stackone", "toolset")

type config struct {
	apiKey     string
	accountID  string
	baseURL    string
	httpClient stackone.Doer
	client     *stackone.Client

	tools    []string
	patterns []string
	include  []string
	exclude  []string

	name         string
	utilityTools bool
	feedbackTool bool
	hybridAlpha  *float64
}

// Option configures the toolset constructors.
type Option func(*config)

// WithAPIKey sets the StackOne API key, STACKONE_API_KEY is used otherwise.
func WithAPIKey(apiKey string) Option {
	return func(c *config) {
		c.apiKey = apiKey
	}
}

// WithAccountID sets the linked account id.
func WithAccountID(accountID string) Option {
	return func(c *config) {
		c.accountID = accountID
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used by the catalog client.
func WithHTTPClient(client stackone.Doer) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithClient reuses an existing catalog client; credential options are
// ignored when set.
func WithClient(client *stackone.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// WithTools selects exact tool names. Takes precedence over
// WithFilterPattern.
func WithTools(names ...string) Option {
	return func(c *config) {
		c.tools = names
	}
}

// WithFilterPattern selects tools by glob patterns, e.g. "hris_*".
func WithFilterPattern(patterns ...string) Option {
	return func(c *config) {
		c.patterns = append(c.patterns, patterns...)
	}
}

// WithIncludeTools keeps only the named tools after fetching.
func WithIncludeTools(names ...string) Option {
	return func(c *config) {
		c.include = names
	}
}

// WithExcludeTools drops the named tools after fetching, even when matched by
// a pattern.
func WithExcludeTools(names ...string) Option {
	return func(c *config) {
		c.exclude = names
	}
}

// WithName sets the toolset name, "stackone" by default.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithUtilityTools adds the tool_search and tool_execute meta tools for
// dynamic discovery.
func WithUtilityTools() Option {
	return func(c *config) {
		c.utilityTools = true
	}
}

// WithFeedbackTool adds the tool_feedback collection tool.
func WithFeedbackTool() Option {
	return func(c *config) {
		c.feedbackTool = true
	}
}

// WithHybridAlpha tunes the BM25/TF-IDF blend used by tool_search, 0..1.
func WithHybridAlpha(alpha float64) Option {
	return func(c *config) {
		c.hybridAlpha = &alpha
	}
}

func (c *config) getClient() (*stackone.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	var opts []stackone.Option
	if c.accountID != "" {
		opts = append(opts, stackone.WithAccountID(c.accountID))
	}
	if c.baseURL != "" {
		opts = append(opts, stackone.WithBaseURL(c.baseURL))
	}
	if c.httpClient != nil {
		opts = append(opts, stackone.WithHTTPClient(c.httpClient))
	}
	return stackone.New(c.apiKey, opts...)
}

// DefaultName is the toolset name when WithName is not used.
const DefaultName = "stackone"

// Toolset is a named collection of agent callable tools.
type Toolset struct {
	name   string
	list   []tools.ITool
	byName map[string]tools.ITool
}

// Name returns the toolset name.
func (ts *Toolset) Name() string {
	return ts.name
}

// Tools returns the tools in catalog order, meta tools last.
func (ts *Toolset) Tools() []tools.ITool {
	return ts.list
}

// Get returns the tool with the given name, or nil.
func (ts *Toolset) Get(name string) tools.ITool {
	return ts.byName[name]
}

// Names returns the tool names in order.
func (ts *Toolset) Names() []string {
	names := make([]string, len(ts.list))
	for i, t := range ts.list {
		names[i] = t.Name()
	}
	return names
}

// Descriptions returns the tool names and descriptions as a JSON block for
// prompts.
func (ts *Toolset) Descriptions() string {
	return tools.GetDescriptions(ts.list...)
}

// FromName wraps a single StackOne tool by exact name.
func FromName(ctx context.Context, toolName string, opts ...Option) (*Tool, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	client, err := cfg.getClient()
	if err != nil {
		return nil, err
	}

	defs, err := client.FetchTools(ctx, toolName)
	if err != nil {
		return nil, err
	}
	def := defs.Get(toolName)
	if def == nil {
		return nil, errors.Errorf("tool %q not found in StackOne", toolName)
	}
	return NewTool(client, def), nil
}

// New fetches the filtered tool collection and wraps each result. Explicit
// names take precedence over patterns; include/exclude lists are applied
// after the fetch.
func New(ctx context.Context, opts ...Option) (*Toolset, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	client, err := cfg.getClient()
	if err != nil {
		return nil, err
	}

	actions := cfg.tools
	if len(actions) == 0 {
		actions = cfg.patterns
	}
	defs, err := client.FetchTools(ctx, actions...)
	if err != nil {
		return nil, err
	}

	ts := &Toolset{
		name:   values.StringsCoalesce(cfg.name, DefaultName),
		byName: make(map[string]tools.ITool),
	}
	for _, def := range defs {
		if cfg.include != nil && !slices.Contains(cfg.include, def.Name) {
			continue
		}
		if slices.Contains(cfg.exclude, def.Name) {
			continue
		}
		ts.add(NewTool(client, def))
	}

	if cfg.utilityTools {
		st, err := NewSearchTool(client, cfg.hybridAlpha)
		if err != nil {
			return nil, err
		}
		et, err := NewExecuteTool(client)
		if err != nil {
			return nil, err
		}
		ts.add(st)
		ts.add(et)
	}
	if cfg.feedbackTool {
		ft, err := NewFeedbackTool(client)
		if err != nil {
			return nil, err
		}
		ts.add(ft)
	}

	logger.KV(xlog.DEBUG,
		"status", "created_toolset",
		"count", len(ts.list))

	return ts, nil
}

func (ts *Toolset) add(t tools.ITool) {
	ts.list = append(ts.list, t)
	ts.byName[t.Name()] = t
}
