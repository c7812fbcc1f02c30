// Package config provides configuration management for memorycare.
// It handles loading the YAML config file from the data directory and
// applying environment variable overrides on top of it.
package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all settings read from config.yaml and the environment.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"logLevel"`

	// Language is the default language for new stores and model prompts
	Language string `yaml:"language"`

	Assistant AssistantConfig `yaml:"assistant"`
}

// AssistantConfig configures the OpenAI-compatible text generation API.
type AssistantConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`

	// SystemPrompt replaces the built-in chat persona when set
	SystemPrompt string `yaml:"systemPrompt"`
}

const DefaultModel = "gpt-4o-mini"

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Language: "en",
		Assistant: AssistantConfig{
			Model: DefaultModel,
		},
	}
}

// GetLogLevel returns the configured level, falling back to info.
func (c *Config) GetLogLevel() zap.AtomicLevel {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return zap.NewAtomicLevelAt(level)
}

// AssistantEnabled reports whether an API key is available.
func (c *Config) AssistantEnabled() bool {
	return c.Assistant.APIKey != ""
}

func validLevel(level string) bool {
	_, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	return err == nil
}
