// Package stackone is a client binding for the StackOne AI tool catalog API.
// It covers the endpoints the agent integration needs: listing account tools,
// executing a tool by name, natural language tool search, and feedback
// submission. Connector logic, auth enforcement and search ranking are all
// server side; this client only issues requests and decodes results.
package stackone

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/stackone", "stackone")

const (
	// DefaultBaseURL is the production StackOne API endpoint.
	DefaultBaseURL = "https://api.stackone.com"

	// EnvAPIKey and EnvAccountID are used when credentials are not
	// provided explicitly.
	EnvAPIKey    = "STACKONE_API_KEY"
	EnvAccountID = "STACKONE_ACCOUNT_ID"
)

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the StackOne AI tools API.
type Client struct {
	apiKey     string
	accountID  string
	baseURL    string
	httpClient Doer
}

// Option is an option for the StackOne client.
type Option func(*Client)

// WithAccountID sets the linked account to scope tool listing and execution.
func WithAccountID(accountID string) Option {
	return func(c *Client) {
		c.accountID = accountID
	}
}

// WithBaseURL overrides the API endpoint, mostly for tests and private
// deployments.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client Doer) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New returns a new StackOne client. When apiKey is empty, the
// STACKONE_API_KEY environment variable is used; the account id defaults to
// STACKONE_ACCOUNT_ID.
func New(apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		apiKey:     values.StringsCoalesce(apiKey, os.Getenv(EnvAPIKey)),
		accountID:  os.Getenv(EnvAccountID),
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimSuffix(c.baseURL, "/")

	if c.apiKey == "" {
		return nil, errors.Errorf("%s is not set", EnvAPIKey)
	}
	return c, nil
}

// AccountID returns the configured account id, which may be empty.
func (c *Client) AccountID() string {
	return c.accountID
}

type errorMessage struct {
	Message string `json:"message"`
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	// StackOne uses Basic auth with the API key as the username.
	req.SetBasicAuth(c.apiKey, "")
	if c.accountID != "" {
		req.Header.Set("X-Account-Id", c.accountID)
	}
}

// do issues a JSON request and decodes the response into out, when out is not
// nil. Non-2xx responses are returned as errors with the API error message
// when one can be decoded.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	c.setHeaders(req)

	r, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer func() {
		_ = r.Body.Close()
	}()

	if r.StatusCode < http.StatusOK || r.StatusCode >= http.StatusMultipleChoices {
		var errResp errorMessage
		if err := json.NewDecoder(r.Body).Decode(&errResp); err != nil || errResp.Message == "" {
			return errors.Errorf("API returned unexpected status code: %d", r.StatusCode)
		}
		return errors.Errorf("API returned unexpected status code: %d: %s", r.StatusCode, errResp.Message)
	}

	if out != nil {
		if err := json.NewDecoder(r.Body).Decode(out); err != nil {
			return errors.Wrap(err, "decode response")
		}
	}
	return nil
}
