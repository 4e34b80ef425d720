// Package config loads configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Provider names for the hunt LLM.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Hunt LLM
	LLMProvider     string
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Link verification
	VerifyTimeout   time.Duration
	VerifyUserAgent string

	// Server
	ServerAddr string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "cobecdev"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "procurement"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     getEnv("BIDHUNT_LLM_PROVIDER", ProviderOllama),
		LLMModel:        getEnv("BIDHUNT_LLM_MODEL", "llama3.1"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		VerifyTimeout:   parseDuration(getEnv("BIDHUNT_VERIFY_TIMEOUT", "15s")),
		VerifyUserAgent: getEnv("BIDHUNT_VERIFY_USER_AGENT", "bidhunt-link-verifier/0.1"),

		ServerAddr: getEnv("BIDHUNT_SERVER_ADDR", ":8484"),

		LogFile:  getEnv("BIDHUNT_LOG_FILE", "/tmp/bidhunt.log"),
		LogLevel: parseLogLevel(getEnv("BIDHUNT_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Second
	}
	return d
}
