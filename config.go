package mysticbot

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ──────────────────────────────────────────────
// Configuration
// ──────────────────────────────────────────────

// Config holds everything needed to run the bot.
// Use NewConfigFromEnv() to load from environment variables (.env file).
type Config struct {
	// TelegramToken authenticates against the Bot API.
	TelegramToken string
	// TelegramAPIBaseURL overrides the Bot API endpoint (empty = official).
	TelegramAPIBaseURL string

	// LLMProvider: "openai" or "deepseek"
	LLMProvider string
	// LLMAPIKey for the selected provider
	LLMAPIKey string
	// LLMBaseURL overrides the provider endpoint (empty = provider default)
	LLMBaseURL string
	// LLMModel overrides the model name (empty = provider default)
	LLMModel string
	// LLMTimeout bounds one completion call
	LLMTimeout time.Duration

	// RedisURL enables Redis-backed sessions (empty = in-memory)
	RedisURL string
	// DatabasePath is the SQLite file for users and conversation logs
	DatabasePath string

	// HealthAddr is the listen address for the health endpoint
	HealthAddr string
	// KeepAliveURL is pinged periodically to keep free-tier hosts awake
	KeepAliveURL string

	// DefaultLanguage for users without a stored preference
	DefaultLanguage Language
	// Debug enables verbose logging
	Debug bool
	// LogFile mirrors log output to a file (empty = stdout only)
	LogFile string
}

// NewConfigFromEnv loads configuration from environment variables, reading
// a .env file first when one exists in the working directory.
func NewConfigFromEnv() (*Config, error) {
	// Ignore a missing .env; real deployments set the environment directly.
	_ = godotenv.Load()

	token := getEnv("TELEGRAM_BOT_TOKEN", "")
	if token == "" {
		return nil, fmt.Errorf("bot token not configured: set TELEGRAM_BOT_TOKEN in environment")
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", "openai"))
	apiKey := getEnv("LLM_API_KEY", "")
	if apiKey == "" {
		// Provider-specific fallbacks kept for older deployments.
		if provider == "deepseek" {
			apiKey = getEnv("DEEPSEEK_API_KEY", "")
		} else {
			apiKey = getEnv("OPENAI_API_KEY", "")
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("LLM API key not configured: set LLM_API_KEY in environment")
	}

	timeout := defaultLLMTimeout
	if raw := getEnv("LLM_TIMEOUT", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	return &Config{
		TelegramToken:      token,
		TelegramAPIBaseURL: getEnv("TELEGRAM_API_BASE_URL", ""),
		LLMProvider:        provider,
		LLMAPIKey:          apiKey,
		LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
		LLMModel:           getEnv("LLM_MODEL", ""),
		LLMTimeout:         timeout,
		RedisURL:           getEnv("REDIS_URL", ""),
		DatabasePath:       getEnv("DATABASE_PATH", "mysticbot.db"),
		HealthAddr:         getEnv("HEALTH_ADDR", ":8080"),
		KeepAliveURL:       getEnv("KEEP_ALIVE_URL", ""),
		DefaultLanguage:    ParseLanguage(getEnv("DEFAULT_LANGUAGE", "en")),
		Debug:              toBool(getEnv("DEBUG", "false")),
		LogFile:            getEnv("LOG_FILE", ""),
	}, nil
}

// Summary returns a human-readable configuration summary with sensitive data masked.
func (c *Config) Summary() string {
	return fmt.Sprintf(
		"Token: %s | LLM: %s/%s | Key: %s | Sessions: %s | DB: %s | Debug: %v",
		maskSecret(c.TelegramToken),
		c.LLMProvider,
		defaultStr(c.LLMModel, "default"),
		maskSecret(c.LLMAPIKey),
		map[bool]string{true: "redis", false: "memory"}[c.RedisURL != ""],
		c.DatabasePath,
		c.Debug,
	)
}

// LLM builds the client configuration for the selected provider.
func (c *Config) LLM() LLMConfig {
	return LLMConfig{
		Provider: c.LLMProvider,
		BaseURL:  c.LLMBaseURL,
		APIKey:   c.LLMAPIKey,
		Model:    c.LLMModel,
		Timeout:  c.LLMTimeout,
	}
}

// --- internal helpers ---

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return strings.TrimSpace(val)
}

func toBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func defaultStr(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

func maskSecret(s string) string {
	if len(s) > 10 {
		return s[:10] + "..."
	}
	return s
}
