package config

import (
	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
	"github.com/promptwire/promptwire/llm/anthropic"
	"github.com/promptwire/promptwire/llm/claudecode"
	"github.com/promptwire/promptwire/llm/gemini"
	"github.com/promptwire/promptwire/llm/grok"
	"github.com/promptwire/promptwire/llm/ollama"
	"github.com/promptwire/promptwire/llm/openai"
	"github.com/promptwire/promptwire/llm/opencode"
)

// NewClient constructs the client for a provider, resolving its
// configuration through the registry and wrapping it with logging
// middleware. model may be empty to use the provider's default.
func NewClient(provider, model string, cfg *Config, logger zerolog.Logger) (llm.Client, error) {
	provider = normalizeProvider(provider)
	if provider == "" {
		provider = normalizeProvider(cfg.DefaultProvider)
	}

	key, err := cfg.Registry().Resolve(provider, model)
	if err != nil {
		return nil, err
	}

	client, err := buildClient(key, cfg, logger)
	if err != nil {
		return nil, err
	}
	return llm.WrapWithMiddleware(client, llm.NewLoggingMiddleware(logger)), nil
}

func buildClient(key *llm.ClientKey, cfg *Config, logger zerolog.Logger) (llm.Client, error) {
	switch key.Provider {
	case llm.ProviderAnthropic:
		return anthropic.NewClient(key.APIKey, key.BaseURL, logger)

	case llm.ProviderOpenAI:
		return openai.NewClient(key.APIKey, key.BaseURL, key.Model, key.Organization, logger)

	case llm.ProviderGemini:
		return gemini.NewClient(key.APIKey, key.BaseURL, key.Model, logger)

	case llm.ProviderGrok:
		return grok.NewClient(key.APIKey, key.BaseURL, key.Model, logger)

	case llm.ProviderOllama:
		return ollama.NewClient(key.Host, key.Model, logger)

	case llm.ProviderClaudeCode:
		var opts []claudecode.Option
		if key.BinaryPath != "" {
			opts = append(opts, claudecode.WithBinaryPath(key.BinaryPath))
		}
		if p := cfg.ClaudeCode.PersistSession; p != nil && !*p {
			opts = append(opts, claudecode.WithoutSessionPersistence())
		}
		return claudecode.NewClient(key.Model, logger, opts...), nil

	case llm.ProviderOpenCode:
		var opts []opencode.Option
		if key.BinaryPath != "" {
			opts = append(opts, opencode.WithBinaryPath(key.BinaryPath))
		}
		if p := cfg.OpenCode.PersistSession; p != nil && *p {
			opts = append(opts, opencode.WithSessionPersistence())
		}
		return opencode.NewClient(key.Model, logger, opts...), nil

	default:
		return nil, llm.Errorf(llm.KindConfiguration, "unknown provider: %s", key.Provider)
	}
}
