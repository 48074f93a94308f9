package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	URI      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Auth           *AuthConfig
	AllowedOrigins []string
	Debug          bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Port:    5432,
		SSLMode: "require",
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env from the working directory or the project root. A missing
	// .env is fine; real deployments set the environment directly.
	for _, location := range []string{".env", "../../.env"} {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	serverConfig := DefaultConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dbConfig := DefaultDatabaseConfig()

	// Prioritize DATABASE_URL if provided, fall back to individual variables.
	if uri := os.Getenv("DATABASE_URL"); uri != "" {
		dbConfig.URI = uri
		dbConfig.SSLMode = getSSLModeFromURI(uri)
	} else {
		dbConfig.Host = getEnvOrDefault("DB_HOST", "localhost")

		if portStr := os.Getenv("DB_PORT"); portStr != "" {
			if port, err := strconv.Atoi(portStr); err == nil {
				dbConfig.Port = port
			}
		}

		dbConfig.User = os.Getenv("DB_USER")
		if dbConfig.User == "" {
			return nil, fmt.Errorf("DB_USER environment variable is required when DATABASE_URL is not set")
		}

		dbConfig.Password = os.Getenv("DB_PASSWORD")
		if dbConfig.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD environment variable is required when DATABASE_URL is not set")
		}

		dbConfig.Name = getEnvOrDefault("DB_NAME", "hivedesk")
		dbConfig.SSLMode = getEnvOrDefault("DB_SSL_MODE", "require")

		dbConfig.URI = fmt.Sprintf(
			"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
			dbConfig.User,
			dbConfig.Password,
			dbConfig.Host,
			dbConfig.Port,
			dbConfig.Name,
			dbConfig.SSLMode,
		)
	}

	authConfig := &AuthConfig{
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  24 * time.Hour,
	}
	if authConfig.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if ttlStr := os.Getenv("TOKEN_TTL_HOURS"); ttlStr != "" {
		if hours, err := strconv.Atoi(ttlStr); err == nil && hours > 0 {
			authConfig.TokenTTL = time.Duration(hours) * time.Hour
		}
	}

	config := &Config{
		Server:         serverConfig,
		Database:       dbConfig,
		Auth:           authConfig,
		AllowedOrigins: []string{"*"},
		Debug:          false,
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Debug = true
	}

	return config, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Helper function to extract sslmode from a DSN, defaults to "require"
func getSSLModeFromURI(uri string) string {
	if strings.Contains(uri, "sslmode=") {
		parts := strings.Split(uri, "?")
		if len(parts) > 1 {
			queryParams := strings.Split(parts[1], "&")
			for _, param := range queryParams {
				kv := strings.SplitN(param, "=", 2)
				if len(kv) == 2 && kv[0] == "sslmode" {
					return kv[1]
				}
			}
		}
	}
	return "require"
}
