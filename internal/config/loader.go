package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atinylittleshell/memorycare/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvAPIKey       = "MEMORYCARE_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvModel        = "MEMORYCARE_MODEL"
	EnvBaseURL      = "MEMORYCARE_BASE_URL"
)

// Loader handles loading and parsing of config.yaml.
type Loader struct {
	logger *zap.Logger
	getenv func(string) string
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
		getenv: os.Getenv,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Config *Config
	Errors []error
}

// LoadFromFile loads configuration from a YAML file.
// If the file doesn't exist, returns default configuration with no error.
func (l *Loader) LoadFromFile(path string) (*LoadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result := &LoadResult{Config: DefaultConfig(), Errors: []error{}}
			l.applyEnv(result.Config)
			return result, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.LoadFromReader(bytes.NewReader(content))
}

// LoadFromReader parses YAML from r. Parse and validation problems are
// collected in LoadResult.Errors and defaults are used for the bad fields.
func (l *Loader) LoadFromReader(r io.Reader) (*LoadResult, error) {
	result := &LoadResult{
		Config: DefaultConfig(),
		Errors: []error{},
	}

	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(result.Config); err != nil && !errors.Is(err, io.EOF) {
		result.Errors = append(result.Errors, fmt.Errorf("parse error: %w", err))
		result.Config = DefaultConfig()
	}

	defaults := DefaultConfig()
	if !validLevel(result.Config.LogLevel) {
		result.Errors = append(result.Errors, fmt.Errorf("logLevel %q is not a valid level", result.Config.LogLevel))
		result.Config.LogLevel = defaults.LogLevel
	}
	if lang, err := models.ParseLanguage(result.Config.Language); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("language: %w", err))
		result.Config.Language = defaults.Language
	} else {
		result.Config.Language = string(lang)
	}
	if result.Config.Assistant.Model == "" {
		result.Config.Assistant.Model = defaults.Assistant.Model
	}

	l.applyEnv(result.Config)

	for _, err := range result.Errors {
		l.logger.Warn("config problem", zap.Error(err))
	}
	return result, nil
}

func (l *Loader) applyEnv(cfg *Config) {
	if key := l.getenv(EnvAPIKey); key != "" {
		cfg.Assistant.APIKey = key
	} else if cfg.Assistant.APIKey == "" {
		cfg.Assistant.APIKey = l.getenv(EnvOpenAIAPIKey)
	}
	if model := l.getenv(EnvModel); model != "" {
		cfg.Assistant.Model = model
	}
	if baseURL := l.getenv(EnvBaseURL); baseURL != "" {
		cfg.Assistant.BaseURL = baseURL
	}
}
