package llm

import (
	"os"
	"sync"
)

// Provider tags for the supported backends. The tag selects which
// adapter package serves a conversation.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderGrok       = "grok"
	ProviderOllama     = "ollama"
	ProviderClaudeCode = "claude-code"
	ProviderOpenCode   = "opencode"
)

// Providers returns all known provider tags in a stable order.
func Providers() []string {
	return []string{
		ProviderAnthropic,
		ProviderOpenAI,
		ProviderGemini,
		ProviderGrok,
		ProviderOllama,
		ProviderClaudeCode,
		ProviderOpenCode,
	}
}

// ProviderKind reports the adapter family of a provider tag.
func ProviderKind(provider string) ClientKind {
	switch provider {
	case ProviderClaudeCode, ProviderOpenCode:
		return ClientKindCLI
	default:
		return ClientKindHTTP
	}
}

// ClientKey uniquely identifies an LLM client configuration.
type ClientKey struct {
	Provider     string
	Model        string
	APIKey       string // For credential-based providers
	BaseURL      string // For OpenAI-compatible and Gemini endpoints
	Host         string // For Ollama
	Organization string // For OpenAI
	BinaryPath   string // For CLI providers
}

// ProviderConfig holds the configuration needed for provider resolution.
// This avoids import cycles by not importing the config package.
type ProviderConfig struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	OpenAIOrg       string
	GeminiAPIKey    string
	GeminiBaseURL   string
	GeminiModel     string
	GrokAPIKey      string
	GrokBaseURL     string
	GrokModel       string
	OllamaHost      string
	OllamaModel     string
	ClaudeCodePath  string
	ClaudeCodeModel string
	OpenCodePath    string
	OpenCodeModel   string
}

// ProviderRegistry manages provider selection and configuration
// resolution. Client creation is handled by the caller to avoid import
// cycles with the adapter packages.
type ProviderRegistry struct {
	enabledProviders map[string]bool
	mu               sync.RWMutex
	config           *ProviderConfig
}

// NewProviderRegistry creates a new ProviderRegistry with the given
// config and enabled providers. An empty enabled list enables all.
func NewProviderRegistry(providerConfig *ProviderConfig, enabledProviders []string) *ProviderRegistry {
	if len(enabledProviders) == 0 {
		enabledProviders = Providers()
	}
	enabledMap := make(map[string]bool)
	for _, p := range enabledProviders {
		enabledMap[p] = true
	}

	return &ProviderRegistry{
		enabledProviders: enabledMap,
		config:           providerConfig,
	}
}

// IsProviderEnabled checks if a provider is in the enabled providers list.
func (r *ProviderRegistry) IsProviderEnabled(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabledProviders[provider]
}

// IsProviderConfigured checks if a provider has the required
// configuration (API keys, hosts, binaries).
func (r *ProviderRegistry) IsProviderConfigured(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isProviderConfiguredUnlocked(provider)
}

// ConfiguredProviders returns the enabled providers that also have the
// configuration they need, in stable order.
func (r *ProviderRegistry) ConfiguredProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for _, p := range Providers() {
		if r.enabledProviders[p] && r.isProviderConfiguredUnlocked(p) {
			out = append(out, p)
		}
	}
	return out
}

// Resolve resolves provider-specific configuration into a ClientKey.
// modelOverride takes precedence over the provider's configured default.
func (r *ProviderRegistry) Resolve(provider, modelOverride string) (*ClientKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.enabledProviders[provider] {
		return nil, Errorf(KindConfiguration, "provider %s is not enabled", provider)
	}
	if !r.isProviderConfiguredUnlocked(provider) {
		return nil, Errorf(KindConfiguration, "provider %s is not configured", provider)
	}
	return r.resolveProviderConfig(provider, modelOverride)
}

// isProviderConfiguredUnlocked must be called with r.mu held.
func (r *ProviderRegistry) isProviderConfiguredUnlocked(provider string) bool {
	switch provider {
	case ProviderAnthropic:
		return firstNonEmpty(r.config.AnthropicAPIKey, os.Getenv("ANTHROPIC_API_KEY")) != ""
	case ProviderOpenAI:
		return firstNonEmpty(r.config.OpenAIAPIKey, os.Getenv("OPENAI_API_KEY")) != ""
	case ProviderGemini:
		return firstNonEmpty(r.config.GeminiAPIKey, os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")) != ""
	case ProviderGrok:
		return firstNonEmpty(r.config.GrokAPIKey, os.Getenv("XAI_API_KEY")) != ""
	case ProviderOllama:
		// Ollama doesn't require an API key; the host has a default.
		return true
	case ProviderClaudeCode, ProviderOpenCode:
		// Binary resolution happens lazily at invocation time; a PATH
		// lookup here would race with environment changes.
		return true
	default:
		return false
	}
}

// resolveProviderConfig must be called with r.mu held.
func (r *ProviderRegistry) resolveProviderConfig(provider, modelOverride string) (*ClientKey, error) {
	key := &ClientKey{
		Provider: provider,
		Model:    modelOverride,
	}

	switch provider {
	case ProviderAnthropic:
		key.APIKey = firstNonEmpty(r.config.AnthropicAPIKey, os.Getenv("ANTHROPIC_API_KEY"))
		if key.APIKey == "" {
			return nil, Errorf(KindConfiguration, "anthropic API key not configured")
		}
		if key.Model == "" {
			key.Model = "claude-sonnet-4-5"
		}

	case ProviderOpenAI:
		key.APIKey = firstNonEmpty(r.config.OpenAIAPIKey, os.Getenv("OPENAI_API_KEY"))
		if key.APIKey == "" {
			return nil, Errorf(KindConfiguration, "openai API key not configured")
		}
		key.BaseURL = firstNonEmpty(r.config.OpenAIBaseURL, os.Getenv("OPENAI_BASE_URL"))
		key.Organization = firstNonEmpty(r.config.OpenAIOrg, os.Getenv("OPENAI_ORG_ID"))
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.OpenAIModel, os.Getenv("OPENAI_MODEL"), "gpt-4o")
		}

	case ProviderGemini:
		key.APIKey = firstNonEmpty(r.config.GeminiAPIKey, os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
		if key.APIKey == "" {
			return nil, Errorf(KindConfiguration, "gemini API key not configured")
		}
		key.BaseURL = r.config.GeminiBaseURL
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.GeminiModel, "gemini-2.0-flash")
		}

	case ProviderGrok:
		key.APIKey = firstNonEmpty(r.config.GrokAPIKey, os.Getenv("XAI_API_KEY"))
		if key.APIKey == "" {
			return nil, Errorf(KindConfiguration, "grok API key not configured")
		}
		key.BaseURL = r.config.GrokBaseURL
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.GrokModel, "grok-4")
		}

	case ProviderOllama:
		key.Host = firstNonEmpty(r.config.OllamaHost, os.Getenv("OLLAMA_HOST"), "http://localhost:11434")
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.OllamaModel, os.Getenv("OLLAMA_MODEL"))
		}
		if key.Model == "" {
			return nil, Errorf(KindConfiguration, "ollama model not specified and no default configured")
		}

	case ProviderClaudeCode:
		key.BinaryPath = r.config.ClaudeCodePath
		if key.Model == "" {
			key.Model = r.config.ClaudeCodeModel
		}

	case ProviderOpenCode:
		key.BinaryPath = r.config.OpenCodePath
		if key.Model == "" {
			key.Model = r.config.OpenCodeModel
		}

	default:
		return nil, Errorf(KindConfiguration, "unknown provider: %s", provider)
	}

	return key, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
