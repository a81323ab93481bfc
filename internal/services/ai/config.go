// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// Timeout bounds a single completion call. There are no retries.
	Timeout time.Duration

	// Model Parameters
	Temperature float32
	TopP        float32
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return NewConfigError("GEMINI_API_KEY is required")
	}
	if c.Model == "" {
		return NewConfigError("chat model is required")
	}
	if c.Timeout <= 0 {
		return NewConfigError(fmt.Sprintf("timeout must be positive, got %s", c.Timeout))
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai",
		Model:       "gemini-1.5-flash-latest",
		Timeout:     60 * time.Second,
		Temperature: 1,
		TopP:        0.95,
	}
}
