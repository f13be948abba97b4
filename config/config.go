// Package config loads the on-disk YAML configuration and turns it
// into constructed llm clients. File values are merged over defaults;
// environment variables fill anything the file leaves empty.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/promptwire/promptwire/llm"
)

// AnthropicConfig configures the Claude provider.
type AnthropicConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	Model        string `yaml:"model,omitempty"`
	Organization string `yaml:"organization,omitempty"`
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// GrokConfig configures the xAI Grok provider.
type GrokConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// OllamaConfig configures the Ollama provider.
type OllamaConfig struct {
	Host  string `yaml:"host,omitempty"`
	Model string `yaml:"model,omitempty"`
}

// ClaudeCodeConfig configures the Claude Code CLI agent.
type ClaudeCodeConfig struct {
	BinaryPath     string `yaml:"binary_path,omitempty"`
	Model          string `yaml:"model,omitempty"`
	PersistSession *bool  `yaml:"persist_session,omitempty"` // default true
}

// OpenCodeConfig configures the OpenCode CLI agent.
type OpenCodeConfig struct {
	BinaryPath     string `yaml:"binary_path,omitempty"`
	Model          string `yaml:"model,omitempty"`
	PersistSession *bool  `yaml:"persist_session,omitempty"` // default false
}

// Config is the root configuration document.
type Config struct {
	// Providers restricts which providers are offered; empty means all.
	Providers []string `yaml:"providers,omitempty"`

	// DefaultProvider is used when the caller names none.
	DefaultProvider string `yaml:"default_provider,omitempty"`

	Anthropic  AnthropicConfig  `yaml:"anthropic,omitempty"`
	OpenAI     OpenAIConfig     `yaml:"openai,omitempty"`
	Gemini     GeminiConfig     `yaml:"gemini,omitempty"`
	Grok       GrokConfig       `yaml:"grok,omitempty"`
	Ollama     OllamaConfig     `yaml:"ollama,omitempty"`
	ClaudeCode ClaudeCodeConfig `yaml:"claude_code,omitempty"`
	OpenCode   OpenCodeConfig   `yaml:"opencode,omitempty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultProvider: llm.ProviderAnthropic,
	}
}

// DefaultPath returns the conventional config file location,
// ~/.config/promptwire/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "promptwire", "config.yaml")
}

// Load reads the YAML file at path and merges it over the defaults. A
// missing file yields the defaults without error; an unreadable or
// malformed file does not.
func Load(path string) (*Config, error) {
	defaults := DefaultConfig()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, llm.NewError(llm.KindConfiguration, fmt.Sprintf("config: reading %s: %v", path, err), err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return nil, llm.NewError(llm.KindConfiguration, fmt.Sprintf("config: parsing %s: %v", path, err), err)
	}

	if err := mergo.Merge(defaults, fileConfig, mergo.WithOverride); err != nil {
		return nil, llm.NewError(llm.KindConfiguration, fmt.Sprintf("config: merging %s: %v", path, err), err)
	}

	return defaults, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return llm.NewError(llm.KindConfiguration, fmt.Sprintf("config: creating %s: %v", filepath.Dir(path), err), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return llm.NewError(llm.KindSerialization, fmt.Sprintf("config: encoding: %v", err), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return llm.NewError(llm.KindConfiguration, fmt.Sprintf("config: writing %s: %v", path, err), err)
	}
	return nil
}

// ProviderConfig projects the document into the llm package's
// resolution shape.
func (c *Config) ProviderConfig() *llm.ProviderConfig {
	return &llm.ProviderConfig{
		AnthropicAPIKey: c.Anthropic.APIKey,
		OpenAIAPIKey:    c.OpenAI.APIKey,
		OpenAIBaseURL:   c.OpenAI.BaseURL,
		OpenAIModel:     c.OpenAI.Model,
		OpenAIOrg:       c.OpenAI.Organization,
		GeminiAPIKey:    c.Gemini.APIKey,
		GeminiBaseURL:   c.Gemini.BaseURL,
		GeminiModel:     c.Gemini.Model,
		GrokAPIKey:      c.Grok.APIKey,
		GrokBaseURL:     c.Grok.BaseURL,
		GrokModel:       c.Grok.Model,
		OllamaHost:      c.Ollama.Host,
		OllamaModel:     c.Ollama.Model,
		ClaudeCodePath:  c.ClaudeCode.BinaryPath,
		ClaudeCodeModel: c.ClaudeCode.Model,
		OpenCodePath:    c.OpenCode.BinaryPath,
		OpenCodeModel:   c.OpenCode.Model,
	}
}

// Registry builds a provider registry from the document.
func (c *Config) Registry() *llm.ProviderRegistry {
	return llm.NewProviderRegistry(c.ProviderConfig(), c.Providers)
}

// normalizeProvider maps user-facing spellings onto provider tags.
func normalizeProvider(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "claude", llm.ProviderAnthropic:
		return llm.ProviderAnthropic
	case "claudecode", "claude_code", llm.ProviderClaudeCode:
		return llm.ProviderClaudeCode
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}
