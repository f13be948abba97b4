package llm

import (
	"testing"
)

// clearProviderEnv pins the provider environment so ambient keys on the
// test machine cannot leak into resolution.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"ANTHROPIC_API_KEY",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_ORG_ID", "OPENAI_MODEL",
		"GEMINI_API_KEY", "GOOGLE_API_KEY",
		"XAI_API_KEY",
		"OLLAMA_HOST", "OLLAMA_MODEL",
	} {
		t.Setenv(name, "")
	}
}

func TestRegistryEnabledSetFiltering(t *testing.T) {
	clearProviderEnv(t)

	registry := NewProviderRegistry(&ProviderConfig{
		AnthropicAPIKey: "sk-ant",
		OpenAIAPIKey:    "sk-oai",
	}, []string{ProviderOpenAI})

	if registry.IsProviderEnabled(ProviderAnthropic) {
		t.Error("anthropic should not be enabled")
	}
	if !registry.IsProviderEnabled(ProviderOpenAI) {
		t.Error("openai should be enabled")
	}

	_, err := registry.Resolve(ProviderAnthropic, "")
	if !IsKind(err, KindConfiguration) {
		t.Fatalf("expected configuration error for disabled provider, got %v", err)
	}
	if _, err := registry.Resolve(ProviderOpenAI, ""); err != nil {
		t.Fatalf("Resolve(openai): %v", err)
	}
}

func TestRegistryEmptyEnabledListEnablesAll(t *testing.T) {
	registry := NewProviderRegistry(&ProviderConfig{}, nil)
	for _, p := range Providers() {
		if !registry.IsProviderEnabled(p) {
			t.Errorf("provider %s should be enabled", p)
		}
	}
}

func TestRegistryUnconfiguredProvider(t *testing.T) {
	clearProviderEnv(t)

	registry := NewProviderRegistry(&ProviderConfig{}, nil)
	if registry.IsProviderConfigured(ProviderAnthropic) {
		t.Error("anthropic should not be configured without a key")
	}
	_, err := registry.Resolve(ProviderAnthropic, "")
	if !IsKind(err, KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRegistryResolvePrecedence(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	// Env key serves when the document has none.
	registry := NewProviderRegistry(&ProviderConfig{}, nil)
	key, err := registry.Resolve(ProviderOpenAI, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if key.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want env fallback", key.APIKey)
	}
	if key.Model != "gpt-4o" {
		t.Errorf("Model = %q, want built-in default", key.Model)
	}

	// Document config wins over env; the override wins over both.
	registry = NewProviderRegistry(&ProviderConfig{
		OpenAIAPIKey: "sk-doc",
		OpenAIModel:  "gpt-4.1",
	}, nil)
	key, err = registry.Resolve(ProviderOpenAI, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if key.APIKey != "sk-doc" {
		t.Errorf("APIKey = %q, want document value", key.APIKey)
	}
	if key.Model != "gpt-4.1" {
		t.Errorf("Model = %q, want configured model", key.Model)
	}

	key, err = registry.Resolve(ProviderOpenAI, "o3-mini")
	if err != nil {
		t.Fatalf("Resolve with override: %v", err)
	}
	if key.Model != "o3-mini" {
		t.Errorf("Model = %q, want override", key.Model)
	}
}

func TestRegistryResolveOllama(t *testing.T) {
	clearProviderEnv(t)

	// Model is required; the host has a default.
	registry := NewProviderRegistry(&ProviderConfig{}, nil)
	_, err := registry.Resolve(ProviderOllama, "")
	if !IsKind(err, KindConfiguration) {
		t.Fatalf("expected configuration error without a model, got %v", err)
	}

	key, err := registry.Resolve(ProviderOllama, "qwen3")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if key.Host != "http://localhost:11434" {
		t.Errorf("Host = %q, want default", key.Host)
	}
	if key.Model != "qwen3" {
		t.Errorf("Model = %q", key.Model)
	}
}

func TestRegistryResolveCLIProviders(t *testing.T) {
	clearProviderEnv(t)

	registry := NewProviderRegistry(&ProviderConfig{
		ClaudeCodePath:  "/opt/bin/claude",
		ClaudeCodeModel: "claude-sonnet-4-5",
	}, nil)

	// CLI providers are configured without credentials; binary
	// resolution happens at invocation time.
	if !registry.IsProviderConfigured(ProviderClaudeCode) {
		t.Error("claude-code should count as configured")
	}

	key, err := registry.Resolve(ProviderClaudeCode, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if key.BinaryPath != "/opt/bin/claude" || key.Model != "claude-sonnet-4-5" {
		t.Errorf("key = %+v", key)
	}
}

func TestRegistryConfiguredProvidersStableOrder(t *testing.T) {
	clearProviderEnv(t)

	registry := NewProviderRegistry(&ProviderConfig{
		AnthropicAPIKey: "sk-ant",
		GrokAPIKey:      "sk-xai",
	}, nil)

	want := []string{
		ProviderAnthropic,
		ProviderGrok,
		ProviderOllama,
		ProviderClaudeCode,
		ProviderOpenCode,
	}
	got := registry.ConfiguredProviders()
	if len(got) != len(want) {
		t.Fatalf("configured = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("configured = %v, want %v", got, want)
		}
	}
}

func TestProviderKindRegistry(t *testing.T) {
	if ProviderKind(ProviderClaudeCode) != ClientKindCLI {
		t.Error("claude-code should be CLI")
	}
	if ProviderKind(ProviderOpenCode) != ClientKindCLI {
		t.Error("opencode should be CLI")
	}
	if ProviderKind(ProviderGemini) != ClientKindHTTP {
		t.Error("gemini should be HTTP")
	}
}
