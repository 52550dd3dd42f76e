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

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	LLM       LLMConfig
	Assistant AssistantConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// DatabaseConfig holds the facility store configuration
type DatabaseConfig struct {
	Driver             string // postgres or sqlite3
	DSN                string // full connection string, takes precedence over the fields below
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AdminToken     string // bearer token for admin routes; empty disables the check
}

// LLMConfig holds the language model backend configuration
type LLMConfig struct {
	Provider string // openai, compatible, ollama; empty means auto-detect
	APIBase  string
	APIKey   string // optional bearer credential
	Model    string
	Timeout  time.Duration

	IntentTemperature   float64
	IntentMaxTokens     int
	ResponseTemperature float64
	ResponseMaxTokens   int
	IssueTemperature    float64
	IssueMaxTokens      int
	HistoryLimit        int
}

// AssistantConfig holds assistant persona settings
type AssistantConfig struct {
	Name string
}

// RateLimitConfig holds the limiter applied to LLM-backed routes
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Enabled reports whether an LLM endpoint is configured
func (c LLMConfig) Enabled() bool {
	return c.APIBase != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "postgres"),
			// DATABASE_URL wins over PG_DSN
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "utm_campus"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 2),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AdminToken:     getEnv("ADMIN_TOKEN", ""),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(getEnv("LLM_PROVIDER", "")),
			APIBase:  strings.TrimRight(getEnv("LLM_API_BASE", ""), "/"),
			APIKey:   getEnv("LLM_API_KEY", ""),
			Model:    getEnv("LLM_MODEL", "deepseek-r1:7b"),
			Timeout:  getEnvAsDuration("LLM_TIMEOUT", 20*time.Second),

			IntentTemperature:   getEnvAsFloat("LLM_INTENT_TEMPERATURE", 0.2),
			IntentMaxTokens:     getEnvAsInt("LLM_INTENT_MAX_TOKENS", 500),
			ResponseTemperature: getEnvAsFloat("LLM_RESPONSE_TEMPERATURE", 0.7),
			ResponseMaxTokens:   getEnvAsInt("LLM_RESPONSE_MAX_TOKENS", 500),
			IssueTemperature:    getEnvAsFloat("LLM_ISSUE_TEMPERATURE", 0.1),
			IssueMaxTokens:      getEnvAsInt("LLM_ISSUE_MAX_TOKENS", 300),
			HistoryLimit:        getEnvAsInt("LLM_HISTORY_LIMIT", 10),
		},
		Assistant: AssistantConfig{
			Name: getEnv("ASSISTANT_NAME", "UTM Campus Assistant"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration values that would otherwise fail at runtime
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q, must be one of: postgres, sqlite3", c.Database.Driver)
	}

	switch c.LLM.Provider {
	case "", "openai", "compatible", "ollama":
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q, must be one of: openai, compatible, ollama", c.LLM.Provider)
	}

	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLM.Timeout)
	}
	if c.LLM.IntentMaxTokens <= 0 || c.LLM.ResponseMaxTokens <= 0 || c.LLM.IssueMaxTokens <= 0 {
		return fmt.Errorf("LLM max token settings must be positive")
	}
	for name, t := range map[string]float64{
		"LLM_INTENT_TEMPERATURE":   c.LLM.IntentTemperature,
		"LLM_RESPONSE_TEMPERATURE": c.LLM.ResponseTemperature,
		"LLM_ISSUE_TEMPERATURE":    c.LLM.IssueTemperature,
	} {
		if t < 0 || t > 2 {
			return fmt.Errorf("%s must be between 0 and 2, got %.2f", name, t)
		}
	}
	if c.LLM.HistoryLimit < 0 {
		return fmt.Errorf("LLM_HISTORY_LIMIT cannot be negative")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	return nil
}

// GetDatabaseDSN returns the facility store connection string
func (c *Config) GetDatabaseDSN() string {
	// An explicit DSN always wins
	if c.Database.DSN != "" {
		return c.Database.DSN
	}

	if c.Database.Driver == "sqlite3" {
		return c.Database.Database + ".db"
	}

	// Otherwise assemble a libpq keyword string
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("15s") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
