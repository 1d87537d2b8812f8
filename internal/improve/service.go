// Package improve rewrites single resume fields through a language model.
package improve

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/types"
)

// Service replaces one field's text with a rewrite.
//
// Calls are not idempotent: the model is told never to return its input
// unchanged, so repeating a call on the same text gives a different answer.
type Service interface {
	Improve(ctx context.Context, req types.ImproveRequest) (*types.ImproveResponse, error)
}

// ParseResponse reads a model answer. A JSON object must carry a non-blank
// "text"; any other non-blank answer is taken as the text itself.
func ParseResponse(raw string) (*types.ImproveResponse, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, &Error{Message: "response is empty"}
	}

	candidate := cleaned
	if !strings.HasPrefix(candidate, "{") {
		obj, ok := llm.ExtractJSONObject(candidate)
		if !ok {
			return &types.ImproveResponse{Text: cleaned}, nil
		}
		candidate = obj
	}

	var decoded struct {
		Text     *string         `json:"text"`
		Feedback *types.Feedback `json:"feedback"`
	}
	err := json.Unmarshal([]byte(candidate), &decoded)
	hasText := err == nil && decoded.Text != nil && strings.TrimSpace(*decoded.Text) != ""
	if !hasText && candidate != cleaned {
		// prose that merely contains braces
		return &types.ImproveResponse{Text: cleaned}, nil
	}
	if err != nil {
		return nil, &Error{Message: "response is not valid JSON", Cause: err}
	}
	if !hasText {
		return nil, &Error{Message: "response is missing the improved text"}
	}

	return &types.ImproveResponse{
		Text:     *decoded.Text,
		Feedback: normalizeFeedback(decoded.Feedback),
	}, nil
}

// DecodeResponse reads an endpoint answer, which must be exactly the JSON
// object {text, feedback?} with a non-blank text.
func DecodeResponse(data []byte) (*types.ImproveResponse, error) {
	var decoded struct {
		Text     *string         `json:"text"`
		Feedback *types.Feedback `json:"feedback"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, &Error{Message: "response is not a JSON improvement payload", Cause: err}
	}
	if decoded.Text == nil || strings.TrimSpace(*decoded.Text) == "" {
		return nil, &Error{Message: "response is missing the improved text"}
	}
	return &types.ImproveResponse{
		Text:     *decoded.Text,
		Feedback: normalizeFeedback(decoded.Feedback),
	}, nil
}

func normalizeFeedback(fb *types.Feedback) *types.Feedback {
	if fb == nil {
		return nil
	}
	if fb.Missing == nil {
		fb.Missing = []string{}
	}
	if fb.Improve == nil {
		fb.Improve = []string{}
	}
	if len(fb.Missing) == 0 && len(fb.Improve) == 0 && strings.TrimSpace(fb.Suggested) == "" {
		return nil
	}
	return fb
}

func validateRequest(req types.ImproveRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return &Error{Message: "text is required"}
	}
	if err := req.Validate(); err != nil {
		return &Error{Message: "invalid improve request", Cause: err}
	}
	return nil
}
