package toolset

import (
	"context"
	"reflect"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/stackone/llmutils"
	"github.com/effective-security/stackone/schema"
	"github.com/effective-security/stackone/stackone"
	"github.com/effective-security/stackone/tools"
)

// FeedbackToolName is the meta tool for collecting user feedback about tool
// interactions.
const FeedbackToolName = "tool_feedback"

// FeedbackRequest represents the tool_feedback input.
type FeedbackRequest struct {
	Feedback string `json:"feedback" jsonschema:"title=Feedback,description=The user's feedback about the tool experience."`
	ToolName string `json:"tool_name,omitempty" jsonschema:"title=Tool Name,description=The tool the feedback relates to."`
}

// FeedbackResult represents the submission acknowledgement.
type FeedbackResult struct {
	ID     string `json:"id" jsonschema:"title=id,description=Submission id."`
	Status string `json:"status" jsonschema:"title=status,description=Submission status."`
}

// FeedbackTool submits feedback to the catalog.
type FeedbackTool struct {
	client     *stackone.Client
	funcParams any
}

var _ tools.Tool[FeedbackRequest, FeedbackResult] = (*FeedbackTool)(nil)

// NewFeedbackTool returns the tool_feedback meta tool.
func NewFeedbackTool(client *stackone.Client) (*FeedbackTool, error) {
	sc, err := schema.New(reflect.TypeOf(FeedbackRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &FeedbackTool{
		client:     client,
		funcParams: sc.Parameters,
	}, nil
}

func (t *FeedbackTool) Name() string {
	return FeedbackToolName
}

func (t *FeedbackTool) Description() string {
	return "Collect feedback about the StackOne tool experience."
}

func (t *FeedbackTool) Parameters() any {
	return t.funcParams
}

func (t *FeedbackTool) Run(ctx context.Context, req *FeedbackRequest) (*FeedbackResult, error) {
	if req.Feedback == "" {
		return nil, errors.New("invalid request: empty feedback")
	}

	res, err := t.client.SubmitFeedback(ctx, &stackone.FeedbackRequest{
		Feedback: req.Feedback,
		ToolName: req.ToolName,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit feedback")
	}
	return &FeedbackResult{
		ID:     res.ID,
		Status: res.Status,
	}, nil
}

func (t *FeedbackTool) Call(ctx context.Context, input string) (string, error) {
	var req FeedbackRequest
	if err := ljson.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", tools.ErrFailedUnmarshalInput
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}
