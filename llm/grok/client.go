// Package grok implements the llm.Client interface for xAI's Grok
// models. Grok exposes a chat-completions-compatible API, so the
// client delegates to the openai package with the xAI base URL.
package grok

import (
	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
	"github.com/promptwire/promptwire/llm/openai"
)

// DefaultBaseURL is the xAI API endpoint.
const DefaultBaseURL = "https://api.x.ai/v1"

// NewClient creates a Grok-backed client. baseURL overrides the xAI
// endpoint when non-empty; model is the default when requests leave
// Model empty.
func NewClient(apiKey, baseURL, model string, logger zerolog.Logger) (llm.Client, error) {
	if apiKey == "" {
		return nil, llm.NewError(llm.KindConfiguration, "grok: api key is required", nil)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return openai.NewClient(apiKey, baseURL, model, "", logger.With().Str("provider", "grok").Logger())
}
