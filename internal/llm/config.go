package llm

import (
	"fmt"
	"strings"
)

// Provider selects the wire format used to talk to the text generation API.
type Provider string

const (
	// ProviderOpenAI speaks the OpenAI-compatible chat completions format
	// (OpenAI, OpenRouter, Groq, Ollama, ...).
	ProviderOpenAI Provider = "openai"
	// ProviderGemini speaks the Google Generative Language generateContent format.
	ProviderGemini Provider = "gemini"
)

const (
	DefaultOpenAIURL = "https://openrouter.ai/api/v1"
	DefaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta"
)

// ParseProvider maps a provider name to a Provider. Empty means openai.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "openai", "openrouter":
		return ProviderOpenAI, nil
	case "gemini", "google":
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unknown llm provider %q", s)
	}
}

// Config holds the configuration for LLM client
//
// Environment Variables (read by internal/config):
// - LLM_PROVIDER: openai or gemini (default: gemini)
// - LLM_API_KEY: API key for the LLM provider (required)
// - LLM_API_URL: API endpoint URL (default depends on provider)
// - LLM_MODEL: Model name to use (default: gemini-2.5-flash)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 4096)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.7)
// - LLM_TIMEOUT: Request timeout in seconds (default: 60)
// - LLM_SITE_URL: Site URL for HTTP referer header (optional)
// - LLM_APP_NAME: Application name for X-Title header (optional)
type Config struct {
	Provider    Provider `json:"provider"`
	APIKey      string   `json:"api_key"`
	APIURL      string   `json:"api_url"`
	Model       string   `json:"model"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	Timeout     int      `json:"timeout"`
	SiteURL     string   `json:"site_url"`
	AppName     string   `json:"app_name"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := ParseProvider(string(c.Provider)); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.APIURL == "" {
		return fmt.Errorf("API URL is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max tokens must be greater than 0")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.Timeout < 1 {
		return fmt.Errorf("timeout must be greater than 0")
	}
	return nil
}

// GetHeaders returns the headers for the LLM API request
func (c *Config) GetHeaders() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	if c.provider() == ProviderGemini {
		headers["x-goog-api-key"] = c.APIKey
		return headers
	}

	headers["Authorization"] = "Bearer " + c.APIKey
	if c.SiteURL != "" {
		headers["HTTP-Referer"] = c.SiteURL
	}
	if c.AppName != "" {
		headers["X-Title"] = c.AppName
	}

	return headers
}

func (c *Config) provider() Provider {
	p, err := ParseProvider(string(c.Provider))
	if err != nil {
		return ProviderOpenAI
	}
	return p
}
