package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/calassist-api/internal/database"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Shared logger; its level follows APP_ENV and LOG_LEVEL once the binary sets it up
var log = logrus.StandardLogger()

const (
	// CallbackPath is where Google redirects back after consent
	CallbackPath = "/api/integrations/google-calendar/callback"
	// ConnectPagePath is the frontend page that renders the connect result
	ConnectPagePath = "/connect/google-calendar"
	// SignInPath is the frontend sign-in page
	SignInPath = "/sign-in"

	developmentSessionSecret = "development-session-secret"
)

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port        int    `json:"port" validate:"min=1,max=65535"`
	Host        string `json:"host" validate:"required"`
	Environment string `json:"environment"`
	FrontendURL string `json:"frontend_url" validate:"required,url"`

	// Database configuration
	DBDriver    string `json:"db_driver" validate:"omitempty,oneof=sqlite postgres postgresql mysql"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`
	DatabaseURL string `json:"database_url"`

	// Redis is optional; without it state replay protection and refresh locking stay in-process
	RedisURL string `json:"redis_url" validate:"omitempty,url"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	SessionSecret string `json:"session_secret" validate:"required,min=16"`

	// Google OAuth client, checked per request rather than at startup
	GoogleClientID     string `json:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret"`

	TokenExpirySkew   time.Duration `json:"token_expiry_skew" validate:"min=0"`
	GoogleHTTPTimeout time.Duration `json:"google_http_timeout" validate:"min=0"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, Environment: %s, FrontendURL: %s, DBDriver: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DatabaseURL: %s, RedisURL: %s, LogLevel: %s, SessionSecret: [REDACTED], GoogleClientID: %s, GoogleClientSecret: [REDACTED], TokenExpirySkew: %s, GoogleHTTPTimeout: %s}",
		c.Port, c.Host, c.Environment, c.FrontendURL, c.DBDriver, c.DBHost, c.DBName, c.DBUser,
		maskDatabaseURL(c.DatabaseURL), maskDatabaseURL(c.RedisURL), c.LogLevel, c.GoogleClientID,
		c.TokenExpirySkew, c.GoogleHTTPTimeout)
}

// IsProduction controls the Secure flag on the OAuth cookies
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RedirectURI is the callback URL registered with Google
func (c *Config) RedirectURI() string {
	return c.FrontendPath(CallbackPath)
}

// FrontendPath joins a path onto the frontend base URL
func (c *Config) FrontendPath(path string) string {
	return strings.TrimRight(c.FrontendURL, "/") + path
}

// Database builds the connection settings used by the database package
func (c *Config) Database() database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
		URL:      c.DatabaseURL,
	}
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// Returns an error if any environment variable is malformed or the resulting config is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	environment := GetEnvWithDefault("APP_ENV", "development")
	if os.Getenv("NODE_ENV") == "production" {
		environment = "production"
	}

	config := &Config{
		Port:               port,
		Host:               GetEnvWithDefault("APP_HOST", "localhost"),
		Environment:        environment,
		FrontendURL:        GetEnvWithDefault("FRONTEND_URL", "http://localhost:3000"),
		DBDriver:           strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
		DBHost:             GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:             GetEnvWithDefault("DB_PORT", "5432"),
		DBName:             GetEnvWithDefault("DB_NAME", "calassist"),
		DBUser:             GetEnvWithDefault("DB_USER", "calassist"),
		DBPassword:         GetEnvWithDefault("DB_PASSWORD", ""),
		DBSSLMode:          GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:             GetEnvWithDefault("DB_PATH", "calassist.sqlite"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		LogLevel:           GetEnvWithDefault("LOG_LEVEL", "info"),
		SessionSecret:      GetEnvWithDefault("SESSION_SECRET", developmentSessionSecret),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		TokenExpirySkew:    GetEnvAsType("TOKEN_EXPIRY_SKEW", 60*time.Second),
		GoogleHTTPTimeout:  GetEnvAsType("GOOGLE_HTTP_TIMEOUT", 15*time.Second),
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if config.IsProduction() && config.SessionSecret == developmentSessionSecret {
		return nil, fmt.Errorf("invalid configuration: SESSION_SECRET must be set in production")
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		duration, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(duration).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
