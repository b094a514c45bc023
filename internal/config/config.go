// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ashureev/portfolio-assistant/internal/shared"
)

// Version is reported by the health endpoints.
const Version = "1.0.0"

// GeminiBaseURL is the OpenAI-compatible Gemini endpoint.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Config holds all application configuration.
type Config struct {
	AppName     string   `env:"APP_NAME" env-default:"Portfolio AI Assistant"`
	Debug       bool     `env:"DEBUG" env-default:"false"`
	Host        string   `env:"HOST" env-default:"0.0.0.0"`
	Port        string   `env:"PORT" env-default:"8000"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"*"`

	Model           ModelConfig
	Session         SessionConfig
	Contact         ContactConfig
	SMTP            SMTPConfig
	Admin           AdminConfig
	RateLimit       RateLimitConfig
	ConversationLog ConversationLogConfig
}

// ModelConfig binds the assistant to a model endpoint.
type ModelConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY"`
	Name    string        `env:"DEFAULT_MODEL" env-default:"gemini-2.5-flash"`
	BaseURL string        `env:"MODEL_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	Timeout time.Duration `env:"MODEL_TIMEOUT" env-default:"0s"`

	// HistoryMaxTurns caps replayed turns per call; 0 replays the full log.
	HistoryMaxTurns int `env:"HISTORY_MAX_TURNS" env-default:"0"`
	// HistoryMaxTokens caps replayed history by token count; 0 disables it.
	HistoryMaxTokens int `env:"HISTORY_MAX_TOKENS" env-default:"0"`
}

// SessionConfig selects the conversation session backend.
type SessionConfig struct {
	Backend       string `env:"SESSION_BACKEND" env-default:"sqlite"`
	DBPath        string `env:"SESSION_DB_PATH" env-default:"conversations.db"`
	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`
}

// ContactConfig locates the contacts table.
type ContactConfig struct {
	DBPath string `env:"CONTACTS_DB_PATH" env-default:"contacts.db"`
	// DatabaseURL selects Postgres instead of the local SQLite file.
	DatabaseURL string `env:"DATABASE_URL"`
}

// SMTPConfig holds outbound notification credentials.
type SMTPConfig struct {
	Host      string        `env:"EMAIL_HOST" env-default:"smtp.gmail.com"`
	Port      int           `env:"EMAIL_PORT" env-default:"587"`
	User      string        `env:"EMAIL_USER"`
	Password  string        `env:"EMAIL_PASSWORD"`
	Recipient string        `env:"RECIPIENT_EMAIL"`
	Timeout   time.Duration `env:"EMAIL_TIMEOUT" env-default:"15s"`
}

// Enabled reports whether enough credentials are present to attempt a send.
func (c SMTPConfig) Enabled() bool {
	return c.User != "" && c.Password != ""
}

// AdminConfig protects the contact listing endpoint.
type AdminConfig struct {
	JWTSecret string `env:"ADMIN_JWT_SECRET"`
}

// RateLimitConfig bounds chat requests per client.
type RateLimitConfig struct {
	RequestsPerWindow int           `env:"RATE_LIMIT_REQUESTS" env-default:"20"`
	WindowDuration    time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"1m"`
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled   bool   `env:"CONVERSATION_LOG_ENABLED" env-default:"false"`
	Dir       string `env:"CONVERSATION_LOG_DIR" env-default:"./data/logs/conversations"`
	QueueSize int    `env:"CONVERSATION_LOG_QUEUE_SIZE" env-default:"1000"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.CORSOrigins = normalizeOrigins(cfg.CORSOrigins)
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if cfg.SMTP.Recipient == "" {
		cfg.SMTP.Recipient = cfg.SMTP.User
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Model.APIKey == "" {
		return shared.Configuration("GEMINI_API_KEY environment variable is required")
	}
	if c.Model.Name == "" {
		return shared.Configuration("DEFAULT_MODEL cannot be empty")
	}
	if c.Port == "" {
		return shared.Configuration("PORT cannot be empty")
	}
	switch c.Session.Backend {
	case "sqlite":
		if c.Session.DBPath == "" {
			return shared.Configuration("SESSION_DB_PATH cannot be empty")
		}
	case "redis":
		if c.Session.RedisAddr == "" {
			return shared.Configuration("REDIS_ADDR cannot be empty")
		}
	default:
		return shared.Configuration(fmt.Sprintf("SESSION_BACKEND %q is not supported", c.Session.Backend))
	}
	if c.Contact.DatabaseURL == "" && c.Contact.DBPath == "" {
		return shared.Configuration("CONTACTS_DB_PATH cannot be empty")
	}
	if c.Model.HistoryMaxTurns < 0 || c.Model.HistoryMaxTokens < 0 {
		return shared.Configuration("history limits must be >= 0")
	}
	if c.RateLimit.RequestsPerWindow <= 0 || c.RateLimit.WindowDuration <= 0 {
		return shared.Configuration("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	if c.ConversationLog.Enabled && c.ConversationLog.Dir == "" {
		return shared.Configuration("CONVERSATION_LOG_DIR cannot be empty")
	}
	if c.ConversationLog.QueueSize <= 0 {
		return shared.Configuration("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// IsContainer returns true if running inside a Docker container.
func IsContainer() bool {
	if os.Getenv("CONTAINER") == "true" {
		return true
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
