package stackone_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/effective-security/stackone/stackone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_New(t *testing.T) {
	t.Setenv(stackone.EnvAPIKey, "")
	t.Setenv(stackone.EnvAccountID, "")

	_, err := stackone.New("")
	assert.EqualError(t, err, "STACKONE_API_KEY is not set")

	c, err := stackone.New("testkey")
	require.NoError(t, err)
	assert.Empty(t, c.AccountID())

	t.Setenv(stackone.EnvAPIKey, "envkey")
	t.Setenv(stackone.EnvAccountID, "envaccount")

	c, err = stackone.New("")
	require.NoError(t, err)
	assert.Equal(t, "envaccount", c.AccountID())

	c, err = stackone.New("explicit", stackone.WithAccountID("acc-1"))
	require.NoError(t, err)
	assert.Equal(t, "acc-1", c.AccountID())
}

func Test_FetchTools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/ai/tools", r.URL.Path)
		assert.Equal(t, []string{"hris_*"}, r.URL.Query()["actions"])

		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "testkey", user)
		assert.Equal(t, "acc-1", r.Header.Get("X-Account-Id"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"tools": []map[string]any{
				{
					"name":        "hris_list_employees",
					"description": "List all employees",
					"parameters": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"limit": map[string]any{"type": "integer"},
						},
					},
				},
				{
					"name":        "hris_get_employee",
					"description": "Get one employee",
					"parameters":  map[string]any{"type": "object"},
				},
				{
					"name":        "ats_list_candidates",
					"description": "List candidates",
					"parameters":  map[string]any{"type": "object"},
				},
			},
		})
	}))
	defer server.Close()

	c, err := stackone.New("testkey",
		stackone.WithAccountID("acc-1"),
		stackone.WithBaseURL(server.URL),
		stackone.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	ctx := context.Background()

	// the fake catalog ignores the filter, the client applies it locally
	tools, err := c.FetchTools(ctx, "hris_*")
	require.NoError(t, err)
	assert.Equal(t, []string{"hris_list_employees", "hris_get_employee"}, tools.Names())

	def := tools.Get("hris_list_employees")
	require.NotNil(t, def)
	assert.Equal(t, "List all employees", def.Description)
	assert.Equal(t, "object", def.Parameters["type"])

	assert.Nil(t, tools.Get("ats_list_candidates"))
}

func Test_FetchTools_NullDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tools":[{"name":"hris_list_employees","description":null,"parameters":{"type":"object"}}]}`))
	}))
	defer server.Close()

	c, err := stackone.New("testkey",
		stackone.WithBaseURL(server.URL),
		stackone.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	tools, err := c.FetchTools(context.Background())
	require.NoError(t, err)

	def := tools.Get("hris_list_employees")
	require.NotNil(t, def)
	assert.Equal(t, "", def.Description)
}

func Test_FetchTools_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"tools": []any{}})
	}))
	defer server.Close()

	c, err := stackone.New("testkey",
		stackone.WithBaseURL(server.URL),
		stackone.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	tools, err := c.FetchTools(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tools)
}

func Test_Match(t *testing.T) {
	tools := stackone.Tools{
		{Name: "hris_list_employees"},
		{Name: "hris_get_employee"},
		{Name: "ats_list_candidates"},
	}

	assert.Equal(t, []string{"hris_list_employees", "hris_get_employee"}, tools.Match("hris_*").Names())
	assert.Equal(t, []string{"ats_list_candidates"}, tools.Match("ats_list_candidates").Names())
	assert.Equal(t,
		[]string{"hris_list_employees", "ats_list_candidates"},
		tools.Match("*_list_*").Names())
	assert.Empty(t, tools.Match("crm_*"))
	assert.Len(t, tools.Match(), 3)
}

func Test_Execute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ai/tools/hris_list_employees/execute", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err)
		assert.Equal(t, "acc-1", body["account_id"])
		assert.Equal(t, map[string]any{"limit": float64(10)}, body["arguments"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"employees": []any{}},
		})
	}))
	defer server.Close()

	c, err := stackone.New("testkey",
		stackone.WithAccountID("acc-1"),
		stackone.WithBaseURL(server.URL),
		stackone.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	res, err := c.Execute(context.Background(), "hris_list_employees", map[string]any{"limit": 10})
	require.NoError(t, err)
	assert.JSONEq(t, `{"employees":[]}`, string(res))

	_, err = c.Execute(context.Background(), "", nil)
	assert.EqualError(t, err, "invalid request: empty tool name")
}

func Test_Execute_NilArguments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, body["arguments"])
		_, hasAccount := body["account_id"]
		assert.False(t, hasAccount)

		_ = json.NewEncoder(w).Encode(map[string]any{"result": true})
	}))
	defer server.Close()

	c, err := stackone.New("testkey",
		stackone.WithBaseURL(server.URL),
		stackone.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	res, err := c.Execute(context.Background(), "hris_list_employees", nil)
	require.NoError(t, err)
	assert.Equal(t, "true", string(res))
}

func Test_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ai/tools/search", r.URL.Path)

		var req stackone.SearchRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "list employees", req.Query)
		assert.Equal(t, 5, req.Limit)
		require.NotNil(t, req.HybridAlpha)
		assert.Equal(t, 0.3, *req.HybridAlpha)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": []map[string]any{
				{"name": "hris_list_employees", "description": "List all employees", "score": 0.92},
			},
		})
	}))
	defer server.Close()

	c, err := stackone.New("testkey",
		stackone.WithBaseURL(server.URL),
		stackone.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	alpha := 0.3
	hits, err := c.Search(context.Background(), &stackone.SearchRequest{
		Query:       "list employees",
		Limit:       5,
		HybridAlpha: &alpha,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "hris_list_employees", hits[0].Name)
	assert.Equal(t, 0.92, hits[0].Score)

	_, err = c.Search(context.Background(), &stackone.SearchRequest{})
	assert.ErrorContains(t, err, "invalid request")
}

func Test_SubmitFeedback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ai/feedback", r.URL.Path)

		var body map[string]any
		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err)
		assert.Equal(t, "works great", body["feedback"])
		assert.Equal(t, "hris_list_employees", body["tool_name"])
		assert.Equal(t, "acc-1", body["account_id"])
		assert.NotEmpty(t, body["submission_id"])

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "fb-1", "status": "received"})
	}))
	defer server.Close()

	c, err := stackone.New("testkey",
		stackone.WithAccountID("acc-1"),
		stackone.WithBaseURL(server.URL),
		stackone.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	res, err := c.SubmitFeedback(context.Background(), &stackone.FeedbackRequest{
		Feedback: "works great",
		ToolName: "hris_list_employees",
	})
	require.NoError(t, err)
	assert.Equal(t, "fb-1", res.ID)
	assert.Equal(t, "received", res.Status)

	_, err = c.SubmitFeedback(context.Background(), &stackone.FeedbackRequest{})
	assert.ErrorContains(t, err, "invalid request")
}

func Test_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "invalid API key"})
	}))
	defer server.Close()

	c, err := stackone.New("badkey",
		stackone.WithBaseURL(server.URL),
		stackone.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = c.FetchTools(context.Background())
	assert.EqualError(t, err, "API returned unexpected status code: 401: invalid API key")
}

func Test_APIError_NoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c, err := stackone.New("testkey",
		stackone.WithBaseURL(server.URL),
		stackone.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = c.FetchTools(context.Background())
	assert.EqualError(t, err, "API returned unexpected status code: 502")
}
