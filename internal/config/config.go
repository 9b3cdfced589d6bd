package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Search  SearchConfig
	Logging LoggingConfig
	Gemini  GeminiConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// StoreConfig holds the property store and conversation log configuration
type StoreConfig struct {
	Driver           string // "sqlite3" or "postgres"
	PropertiesDSN    string
	ConversationsDSN string
	FeedPath         string // JSON listing feed loaded at startup
	MaxConnections   int
	MaxIdleConns     int
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	Limit        int // hard cap on returned rows
	CacheTTL     int // seconds
	HistoryLimit int // recent messages fed back into the prompt
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// GeminiConfig holds upstream LLM API configuration
type GeminiConfig struct {
	APIKeys  []string // ordered; first-listed is tried first on every rotation
	Endpoint string
	Timeout  int // seconds
	Enabled  bool
}

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-pro-preview-03-25:generateContent"

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	keys := splitKeys(getEnv("GEMINI_KEYS", ""))

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Store: StoreConfig{
			Driver:           getEnv("DB_DRIVER", "sqlite3"),
			PropertiesDSN:    getEnv("PROPERTIES_DSN", "propiedades.db"),
			ConversationsDSN: getEnv("CONVERSATIONS_DSN", "conversaciones.db"),
			FeedPath:         getEnv("PROPERTIES_FEED", "properties.json"),
			MaxConnections:   getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
		},
		Search: SearchConfig{
			Limit:        getEnvAsInt("SEARCH_LIMIT", 50),
			CacheTTL:     getEnvAsInt("CACHE_TTL", 300),
			HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 3),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Gemini: GeminiConfig{
			APIKeys:  keys,
			Endpoint: getEnv("GEMINI_ENDPOINT", defaultEndpoint),
			Timeout:  getEnvAsInt("GEMINI_TIMEOUT", 30),
			Enabled:  len(keys) > 0,
		},
	}

	if cfg.Store.Driver != "sqlite3" && cfg.Store.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Store.Driver)
	}

	return cfg, nil
}

// splitKeys parses the comma-separated GEMINI_KEYS value, preserving order
func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
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
