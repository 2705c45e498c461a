package stackone

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FeedbackRequest carries user feedback about a tool interaction.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
	// ToolName is the tool the feedback relates to, optional.
	ToolName string         `json:"tool_name,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// FeedbackResult is the acknowledgement returned by the API.
type FeedbackResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type feedbackPayload struct {
	FeedbackRequest

	// SubmissionID deduplicates retried submissions.
	SubmissionID string `json:"submission_id"`
	AccountID    string `json:"account_id,omitempty"`
}

// SubmitFeedback posts feedback to the catalog.
func (c *Client) SubmitFeedback(ctx context.Context, req *FeedbackRequest) (*FeedbackResult, error) {
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "invalid request")
	}

	payload := feedbackPayload{
		FeedbackRequest: *req,
		SubmissionID:    uuid.NewString(),
		AccountID:       c.accountID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	var res FeedbackResult
	if err := c.do(ctx, http.MethodPost, "/ai/feedback", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
