package stackone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/sjson"
)

type executeResponse struct {
	Result json.RawMessage `json:"result"`
}

// Execute runs the named tool with the given arguments and returns the raw
// connector response. Nil arguments are sent as an empty object. The
// configured account id, when set, is injected into the request body so the
// call is routed to the linked account.
func (c *Client) Execute(ctx context.Context, name string, arguments map[string]any) (json.RawMessage, error) {
	if name == "" {
		return nil, errors.New("invalid request: empty tool name")
	}
	if arguments == nil {
		arguments = map[string]any{}
	}

	body, err := json.Marshal(map[string]any{
		"arguments": arguments,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal arguments")
	}
	if c.accountID != "" {
		body, err = sjson.SetBytes(body, "account_id", c.accountID)
		if err != nil {
			return nil, errors.Wrap(err, "set account id")
		}
	}

	var res executeResponse
	p := "/ai/tools/" + url.PathEscape(name) + "/execute"
	if err := c.do(ctx, http.MethodPost, p, body, &res); err != nil {
		return nil, err
	}
	return res.Result, nil
}
