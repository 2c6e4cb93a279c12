package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the server configuration loaded from environment variables.
type Config struct {
	Port     string `envconfig:"JANUS_PORT" default:"8080"`
	LogLevel string `envconfig:"JANUS_LOG_LEVEL" default:"info"`

	// Agent identity, surfaced in the agent card and the assistant record.
	AgentName        string `envconfig:"JANUS_AGENT_NAME" default:"janus"`
	AgentDescription string `envconfig:"JANUS_AGENT_DESCRIPTION" default:"Dual-protocol agent bridge"`

	// Provider selection. Empty means the echo fallback handler.
	Provider string `envconfig:"JANUS_PROVIDER"`
	Model    string `envconfig:"JANUS_MODEL"`

	AnthropicKey string `envconfig:"ANTHROPIC_API_KEY"`
	OpenAIKey    string `envconfig:"OPENAI_API_KEY"`
	GoogleKey    string `envconfig:"GOOGLE_API_KEY"`
}

// LoadConfig loads configuration from environment variables.
// A .env file is loaded first if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected provider has its API key.
func (c *Config) Validate() error {
	switch c.Provider {
	case "":
		return nil
	case "anthropic":
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for anthropic provider")
		}
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for openai provider")
		}
	case "google":
		if c.GoogleKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for google provider")
		}
	default:
		return fmt.Errorf("unknown provider: %s (must be anthropic, openai, or google)", c.Provider)
	}
	return nil
}
