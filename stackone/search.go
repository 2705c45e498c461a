package stackone

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// DefaultHybridAlpha blends the catalog's BM25 and TF-IDF rankings; the
// server applies it when the request leaves HybridAlpha unset.
const DefaultHybridAlpha = 0.5

// SearchRequest is a natural language query against the tool catalog.
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	// Limit caps the number of hits, server default when 0.
	Limit int `json:"limit,omitempty" validate:"gte=0"`
	// HybridAlpha tunes the BM25/TF-IDF blend, 0..1.
	HybridAlpha *float64 `json:"hybrid_alpha,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// SearchHit is one ranked match from the catalog search.
type SearchHit struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type searchResponse struct {
	Hits []SearchHit `json:"hits"`
}

// Search runs the catalog's hybrid ranking over tool names and descriptions.
func (c *Client) Search(ctx context.Context, req *SearchRequest) ([]SearchHit, error) {
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "invalid request")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	var res searchResponse
	if err := c.do(ctx, http.MethodPost, "/ai/tools/search", body, &res); err != nil {
		return nil, err
	}
	return res.Hits, nil
}
