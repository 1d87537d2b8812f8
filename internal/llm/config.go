// Package llm wraps the text-generation provider behind a small client interface.
package llm

import (
	"fmt"
	"maps"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short rewrites of a single field
	TierLite ModelTier = "lite"
	// TierStandard is the default for field improvement with feedback
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form fields such as the summary
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultTemperature is used when a request leaves Temperature at zero.
const DefaultTemperature float32 = 0.7

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
	}
}

// GetModel returns the model name for a given tier, falling back to
// standard and then lite. It returns "" when nothing is configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, candidate := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[candidate]; ok && model != "" {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of the config with model assigned to tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := *c
	next.Models = maps.Clone(c.Models)
	if next.Models == nil {
		next.Models = make(map[ModelTier]string)
	}
	next.Models[tier] = model
	return &next
}

// ParseTier converts a flag or config value into a ModelTier. Empty means standard.
func ParseTier(value string) (ModelTier, error) {
	switch ModelTier(strings.ToLower(strings.TrimSpace(value))) {
	case "", TierStandard:
		return TierStandard, nil
	case TierLite:
		return TierLite, nil
	case TierAdvanced:
		return TierAdvanced, nil
	default:
		return "", fmt.Errorf("unknown model tier %q (want lite, standard or advanced)", value)
	}
}
