package improve

import (
	"context"
	"log"
	"strings"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/types"
)

// LLMImprover asks a language model directly for the rewrite.
type LLMImprover struct {
	Client      llm.Client
	Tier        llm.ModelTier
	Temperature float32
}

// NewLLMImprover returns an improver on the standard tier.
func NewLLMImprover(client llm.Client) *LLMImprover {
	return &LLMImprover{Client: client, Tier: llm.TierStandard}
}

// Improve implements Service.
func (i *LLMImprover) Improve(ctx context.Context, req types.ImproveRequest) (*types.ImproveResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	system, err := prompts.Get(prompts.ImproveFile, "system")
	if err != nil {
		return nil, &Error{Message: "failed to load system prompt", Cause: err}
	}
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	raw, err := i.Client.Generate(ctx, llm.Request{
		System:      system,
		Prompt:      prompt,
		Tier:        i.Tier,
		Temperature: i.Temperature,
		JSON:        true,
	})
	if err != nil {
		log.Printf("[improve] generation failed for field %q: %v", req.Field, err)
		return nil, &Error{Message: "language model request failed", Cause: err}
	}
	return ParseResponse(raw)
}

func buildPrompt(req types.ImproveRequest) (string, error) {
	data := map[string]string{"Text": req.Text, "Field": req.Field}

	key := "plain"
	if req.Field != "" {
		key = "field"
	}
	prompt, err := prompts.Render(prompts.ImproveFile, key, data)
	if err != nil {
		return "", err
	}

	hint, err := prompts.Get(prompts.ImproveFile, "field-hint-"+fieldKind(req.Field))
	if err != nil {
		hint, err = prompts.Get(prompts.ImproveFile, "field-hint-default")
		if err != nil {
			return "", err
		}
	}
	return prompt + "\n\n" + hint, nil
}

// fieldKind reduces "experience.description" to "description".
func fieldKind(field string) string {
	if idx := strings.LastIndex(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	field = strings.ToLower(strings.TrimSpace(field))
	if field == "" {
		return "default"
	}
	return field
}
