// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultSystemPrompt = `You are a friendly and intelligent virtual assistant, designed to help people with their questions and tasks. You aim to be polite, clear, and helpful. Always respond in the same language in which the question was asked (if possible).

Your goal is to provide accurate and concise answers, explaining complex things in simple terms. If you're asked to create a table or a chart, do it. Pay close attention to details and try to understand the essence of the request before replying.

You are capable of processing data, assisting with studies, projects, research, and even just having a casual conversation. Keep the conversation interesting and adapt your communication style to the user: be informal if the person speaks casually, or formal if the user communicates officially.

Your main task is to be a useful, clear, and pleasant conversational partner.`

// Chat store drivers.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

type Config struct {
	Environment string
	ServerPort  string
	LogLevel    string

	GeminiAPIKey string
	LLMBaseURL   string
	ChatModel    string
	LLMTimeout   time.Duration
	SystemPrompt string

	ChatStore        string
	DataFile         string
	SessionDB        string
	SessionCacheSize int

	RateLimitMax    int
	RateLimitWindow time.Duration
	TrustedProxy    bool
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() *Config {
	return &Config{
		Environment:      os.Getenv("ENV"),
		ServerPort:       getEnv("SERVER_PORT", "5001"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		LLMBaseURL:       getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		ChatModel:        getEnv("CHAT_MODEL", "gemini-1.5-flash-latest"),
		LLMTimeout:       getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		SystemPrompt:     getEnv("SYSTEM_PROMPT", defaultSystemPrompt),
		ChatStore:        strings.ToLower(getEnv("CHAT_STORE", StoreJSON)),
		DataFile:         getEnv("DATA_FILE", "chats.json"),
		SessionDB:        getEnv("SESSION_DB", "sessions.db"),
		SessionCacheSize: getEnvAsInt("SESSION_CACHE_SIZE", 128),
		RateLimitMax:     getEnvAsInt("RATE_LIMIT_MAX", 30),
		RateLimitWindow:  getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		TrustedProxy:     getEnvAsBool("TRUSTED_PROXY", false),
	}
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// Validate checks values that would otherwise fail later at request time.
func (c *Config) Validate() error {
	if c.ChatStore != StoreJSON && c.ChatStore != StoreSQLite {
		return fmt.Errorf("CHAT_STORE must be %q or %q, got %q", StoreJSON, StoreSQLite, c.ChatStore)
	}
	if c.RateLimitMax < 1 {
		return fmt.Errorf("RATE_LIMIT_MAX must be at least 1")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}

	// Validation for production environments
	if c.IsProduction() {
		missing := []string{}
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required production environment variables: %v", missing)
		}
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as boolean. Using default value.", key)
		return defaultValue
	}
	return b
}
