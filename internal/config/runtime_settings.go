package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MimeLyc/bilingual-news/internal/llm"
	"github.com/robfig/cron/v3"
)

const DefaultRuntimeSettingsFile = "/app/config/settings.json"

// ErrInvalidSettings wraps every validation failure of RuntimeSettings.
var ErrInvalidSettings = errors.New("invalid runtime settings")

// RuntimeSettings are the values an operator may change while the server
// runs. They are persisted as JSON and override the environment on start.
type RuntimeSettings struct {
	LLMProvider string `json:"llm_provider"`
	LLMAPIURL   string `json:"llm_api_url"`
	LLMAPIKey   string `json:"llm_api_key"`
	LLMModel    string `json:"llm_model"`
	CronExpr    string `json:"cron_expr"`
}

func RuntimeSettingsFilePath() string {
	return getEnvString("SETTINGS_FILE", DefaultRuntimeSettingsFile)
}

func (s RuntimeSettings) Validate() error {
	if _, err := llm.ParseProvider(s.LLMProvider); err != nil {
		return fmt.Errorf("%w: llm_provider: %v", ErrInvalidSettings, err)
	}
	if strings.TrimSpace(s.LLMAPIURL) == "" {
		return fmt.Errorf("%w: llm_api_url is required", ErrInvalidSettings)
	}
	if strings.TrimSpace(s.LLMAPIKey) == "" {
		return fmt.Errorf("%w: llm_api_key is required", ErrInvalidSettings)
	}
	if strings.TrimSpace(s.LLMModel) == "" {
		return fmt.Errorf("%w: llm_model is required", ErrInvalidSettings)
	}
	if strings.TrimSpace(s.CronExpr) == "" {
		return fmt.Errorf("%w: cron_expr is required", ErrInvalidSettings)
	}
	if _, err := cron.ParseStandard(s.CronExpr); err != nil {
		return fmt.Errorf("%w: cron_expr: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Masked returns a copy safe to show to clients: all but the last four
// characters of the API key are hidden.
func (s RuntimeSettings) Masked() RuntimeSettings {
	s.LLMAPIKey = MaskSecret(s.LLMAPIKey)
	return s
}

func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}

func (c *Config) RuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		LLMProvider: c.LLM.Provider,
		LLMAPIURL:   c.LLM.APIURL,
		LLMAPIKey:   c.LLM.APIKey,
		LLMModel:    c.LLM.Model,
		CronExpr:    c.Retranslate.CronExpr,
	}
}

func WithRuntimeSettings(settings RuntimeSettings) Option {
	return func(c *Config) {
		if strings.TrimSpace(settings.LLMProvider) != "" {
			c.LLM.Provider = settings.LLMProvider
		}
		if strings.TrimSpace(settings.LLMAPIURL) != "" {
			c.LLM.APIURL = settings.LLMAPIURL
		}
		if strings.TrimSpace(settings.LLMAPIKey) != "" {
			c.LLM.APIKey = settings.LLMAPIKey
		}
		if strings.TrimSpace(settings.LLMModel) != "" {
			c.LLM.Model = settings.LLMModel
		}
		if strings.TrimSpace(settings.CronExpr) != "" {
			c.Retranslate.CronExpr = settings.CronExpr
		}
	}
}

// Apply returns a copy of the LLM section with the runtime settings applied.
func (s RuntimeSettings) Apply(base LLMConfig) LLMConfig {
	cfg := &Config{LLM: base}
	WithRuntimeSettings(s)(cfg)
	return cfg.LLM
}

func LoadRuntimeSettingsFile(path string) (RuntimeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeSettings{}, err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return RuntimeSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

func WriteRuntimeSettingsFile(path string, settings RuntimeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// RuntimeSettingsStore keeps the current settings in memory and writes every
// accepted update to disk.
type RuntimeSettingsStore struct {
	path string

	mu      sync.RWMutex
	current RuntimeSettings
}

func NewRuntimeSettingsStore(path string, initial RuntimeSettings) (*RuntimeSettingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings file path is required")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeSettingsStore{
		path:    path,
		current: initial,
	}, nil
}

func (s *RuntimeSettingsStore) GetRuntimeSettings() (RuntimeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// UpdateRuntimeSettings validates and persists next. An empty API key keeps
// the current one, so clients can echo back the masked settings.
func (s *RuntimeSettingsStore) UpdateRuntimeSettings(next RuntimeSettings) (RuntimeSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(next.LLMAPIKey) == "" || next.LLMAPIKey == MaskSecret(s.current.LLMAPIKey) {
		next.LLMAPIKey = s.current.LLMAPIKey
	}
	if err := next.Validate(); err != nil {
		return RuntimeSettings{}, err
	}
	if err := WriteRuntimeSettingsFile(s.path, next); err != nil {
		return RuntimeSettings{}, err
	}
	s.current = next
	return next, nil
}
