package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/MimeLyc/bilingual-news/internal/llm"
	"github.com/MimeLyc/bilingual-news/pkg/log"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration.
//
// Environment Variables:
// LLM Configuration:
// - LLM_PROVIDER: "gemini" or "openai" (default: gemini)
// - LLM_API_KEY: API key for the LLM provider (required)
// - LLM_API_URL: API endpoint URL (default depends on provider)
// - LLM_MODEL: Model name (default: gemini-2.5-flash, or openai/gpt-4o-mini for openai)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 8000)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.7)
// - LLM_TIMEOUT: Request timeout in seconds (default: 60)
// - LLM_SITE_URL / LLM_APP_NAME: OpenRouter attribution headers (optional)
//
// Translation:
// - TRANSLATE_MAX_ATTEMPTS: attempts per call (default: 3)
// - TRANSLATE_BASE_DELAY_MS: first backoff delay (default: 1000)
// - TRANSLATE_ATTEMPT_TIMEOUT: per attempt timeout, "30s" or seconds (default: 30s)
// - TRANSLATE_MAX_TAGS: tags kept per language (default: 7)
//
// Retranslation:
// - RETRANSLATE_CRON: schedule for retrying fallback articles (default: */30 * * * *)
// - RETRANSLATE_BATCH: articles enqueued per run (default: 20)
// - RETRANSLATE_WORKERS: worker count (default: 1)
//
// System:
// - HTTP_ADDR: listen address (default: :8080)
// - HTTP_CORS_ORIGIN: Access-Control-Allow-Origin value (default: *)
// - DATA_DIR: database directory (default: /app/data)
// - LOG_LEVEL: debug, info, warn, error (default: info)
type Config struct {
	LLM         LLMConfig         `json:"llm"`
	Translate   TranslateConfig   `json:"translate"`
	Retranslate RetranslateConfig `json:"retranslate"`
	HTTP        HTTPConfig        `json:"http"`
	System      SystemConfig      `json:"system"`
}

// LLMConfig holds the configuration for the LLM client.
type LLMConfig struct {
	Provider    string  `json:"provider"`
	APIKey      string  `json:"-"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
	SiteURL     string  `json:"site_url"`
	AppName     string  `json:"app_name"`
}

type TranslateConfig struct {
	MaxAttempts    int           `json:"max_attempts"`
	BaseDelay      time.Duration `json:"base_delay"`
	AttemptTimeout time.Duration `json:"attempt_timeout"`
	MaxTags        int           `json:"max_tags"`
}

type RetranslateConfig struct {
	CronExpr  string `json:"cron_expr"`
	BatchSize int    `json:"batch_size"`
	Workers   int    `json:"workers"`
}

type HTTPConfig struct {
	Addr       string `json:"addr"`
	CORSOrigin string `json:"cors_origin"`
}

type SystemConfig struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
}

// DBPath is the SQLite database file inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.System.DataDir, "news.db")
}

// ClientConfig converts the LLM section into the llm package configuration.
func (c LLMConfig) ClientConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.Provider)
	if err != nil {
		return nil, err
	}
	return &llm.Config{
		Provider:    provider,
		APIKey:      c.APIKey,
		APIURL:      c.APIURL,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
		SiteURL:     c.SiteURL,
		AppName:     c.AppName,
	}, nil
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	provider := getEnvString("LLM_PROVIDER", string(llm.ProviderGemini))
	config := &Config{
		LLM: LLMConfig{
			Provider:    provider,
			APIKey:      getEnvString("LLM_API_KEY", ""),
			APIURL:      getEnvString("LLM_API_URL", defaultAPIURL(provider)),
			Model:       getEnvString("LLM_MODEL", defaultModel(provider)),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 8000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
			Timeout:     getEnvInt("LLM_TIMEOUT", 60),
			SiteURL:     getEnvString("LLM_SITE_URL", ""),
			AppName:     getEnvString("LLM_APP_NAME", ""),
		},
		Translate: TranslateConfig{
			MaxAttempts:    getEnvInt("TRANSLATE_MAX_ATTEMPTS", 3),
			BaseDelay:      time.Duration(getEnvInt("TRANSLATE_BASE_DELAY_MS", 1000)) * time.Millisecond,
			AttemptTimeout: getEnvDuration("TRANSLATE_ATTEMPT_TIMEOUT", 30*time.Second),
			MaxTags:        getEnvInt("TRANSLATE_MAX_TAGS", 7),
		},
		Retranslate: RetranslateConfig{
			CronExpr:  getEnvString("RETRANSLATE_CRON", "*/30 * * * *"),
			BatchSize: getEnvInt("RETRANSLATE_BATCH", 20),
			Workers:   getEnvInt("RETRANSLATE_WORKERS", 1),
		},
		HTTP: HTTPConfig{
			Addr:       getEnvString("HTTP_ADDR", ":8080"),
			CORSOrigin: getEnvString("HTTP_CORS_ORIGIN", "*"),
		},
		System: SystemConfig{
			DataDir:  getEnvString("DATA_DIR", "/app/data"),
			LogLevel: getEnvString("LOG_LEVEL", "info"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Info("Config: provider=%s model=%s api_url=%s http=%s data_dir=%s retranslate_cron=%q",
		config.LLM.Provider, config.LLM.Model, config.LLM.APIURL, config.HTTP.Addr, config.System.DataDir, config.Retranslate.CronExpr)
	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if _, err := llm.ParseProvider(c.LLM.Provider); err != nil {
		return fmt.Errorf("LLM_PROVIDER: %w", err)
	}
	if c.Translate.MaxAttempts <= 0 {
		return fmt.Errorf("TRANSLATE_MAX_ATTEMPTS must be positive")
	}
	if c.Translate.MaxTags <= 0 {
		return fmt.Errorf("TRANSLATE_MAX_TAGS must be positive")
	}
	if c.Translate.BaseDelay < 0 {
		return fmt.Errorf("TRANSLATE_BASE_DELAY_MS must not be negative")
	}
	if _, err := cron.ParseStandard(c.Retranslate.CronExpr); err != nil {
		return fmt.Errorf("invalid RETRANSLATE_CRON: %w", err)
	}
	return nil
}

func defaultAPIURL(provider string) string {
	if p, err := llm.ParseProvider(provider); err == nil && p == llm.ProviderOpenAI {
		return llm.DefaultOpenAIURL
	}
	return llm.DefaultGeminiURL
}

func defaultModel(provider string) string {
	if p, err := llm.ParseProvider(provider); err == nil && p == llm.ProviderOpenAI {
		return "openai/gpt-4o-mini"
	}
	return "gemini-2.5-flash"
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts a Go duration ("45s") or a plain number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
