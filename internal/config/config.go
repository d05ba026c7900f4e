package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Gateway   GatewayConfig
	Logger    LoggerConfig
	Admin     AdminConfig
	S3        S3Config
	Sync      SyncConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// GatewayConfig holds the remote data gateway connection settings.
// URL and AccessKey are supplied by the environment and treated as secrets.
type GatewayConfig struct {
	URL             string
	AccessKey       string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AdminConfig holds the shared-password admin gate configuration.
type AdminConfig struct {
	Password       string
	SessionBackend string // "memory" or "redis"
	RedisAddr      string
}

// S3Config holds AWS S3 configuration for uploaded images.
type S3Config struct {
	Enabled       bool
	Bucket        string
	Region        string
	Prefix        string // Key prefix within bucket (e.g., "images/")
	PublicBaseURL string // Optional CDN or website endpoint for object URLs
}

// SyncConfig tunes the state container's remote writes and change feed.
type SyncConfig struct {
	WriteTimeout           time.Duration
	ReconnectMaxRetries    int
	ReconnectInitial       time.Duration
	ReconnectMaxInterval   time.Duration
	CascadeCategoryDeletes bool
	EventBuffer            int
}

// TelemetryConfig holds tracing configuration.
type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := fromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadGateway loads configuration for tooling that only talks to the
// gateway. Server, admin and S3 settings are read but not checked.
func LoadGateway() (*Config, error) {
	cfg := fromEnv()

	if err := cfg.Gateway.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Gateway: GatewayConfig{
			URL:             getEnv("GATEWAY_URL", ""),
			AccessKey:       getEnv("GATEWAY_ACCESS_KEY", ""),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 2),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Admin: AdminConfig{
			Password:       getEnv("ADMIN_PASSWORD", ""),
			SessionBackend: getEnv("ADMIN_SESSION_BACKEND", "memory"),
			RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		},
		S3: S3Config{
			Enabled:       getEnvAsBool("S3_ENABLED", false),
			Bucket:        getEnv("S3_BUCKET", ""),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Prefix:        getEnv("S3_PREFIX", "images/"),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
		Sync: SyncConfig{
			WriteTimeout:           time.Duration(getEnvAsInt("SYNC_WRITE_TIMEOUT", 10)) * time.Second,
			ReconnectMaxRetries:    getEnvAsInt("SYNC_RECONNECT_MAX_RETRIES", 5),
			ReconnectInitial:       time.Duration(getEnvAsInt("SYNC_RECONNECT_INITIAL_INTERVAL_MS", 500)) * time.Millisecond,
			ReconnectMaxInterval:   time.Duration(getEnvAsInt("SYNC_RECONNECT_MAX_INTERVAL", 30)) * time.Second,
			CascadeCategoryDeletes: getEnvAsBool("SYNC_CASCADE_CATEGORY_DELETES", true),
			EventBuffer:            getEnvAsInt("SYNC_EVENT_BUFFER", 64),
		},
		Telemetry: TelemetryConfig{
			Enabled:     getEnvAsBool("TRACING_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: getEnv("SERVICE_NAME", "storefront"),
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if err := c.Gateway.Validate(); err != nil {
		return err
	}

	if c.Admin.Password == "" {
		return fmt.Errorf("admin password is required")
	}

	if c.Admin.SessionBackend != "memory" && c.Admin.SessionBackend != "redis" {
		return fmt.Errorf("invalid admin session backend: %s (must be memory or redis)", c.Admin.SessionBackend)
	}

	if c.Admin.SessionBackend == "redis" && c.Admin.RedisAddr == "" {
		return fmt.Errorf("redis address is required when the redis session backend is selected")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Sync.WriteTimeout <= 0 {
		return fmt.Errorf("sync write timeout must be positive")
	}

	if c.Sync.ReconnectMaxRetries < 0 {
		return fmt.Errorf("sync reconnect max retries cannot be negative")
	}

	if c.Sync.EventBuffer < 1 {
		return fmt.Errorf("sync event buffer must be at least 1")
	}

	return nil
}

// Validate validates the gateway connection settings.
func (c *GatewayConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("gateway URL is required")
	}

	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("invalid gateway URL: %w", err)
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("gateway max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("gateway min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("gateway min connections cannot exceed max connections")
	}

	// One listener connection is held per subscribed table.
	if c.MaxConnections < 4 {
		return fmt.Errorf("gateway max connections must be at least 4 (3 change feed listeners + 1 query)")
	}

	return nil
}

// ConnectionString returns the gateway connection string with the access key
// applied as the password. An access key already present in the URL is kept
// when AccessKey is empty.
func (c *GatewayConfig) ConnectionString() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse gateway URL: %w", err)
	}

	if c.AccessKey != "" {
		user := "postgres"
		if u.User != nil && u.User.Username() != "" {
			user = u.User.Username()
		}
		u.User = url.UserPassword(user, c.AccessKey)
	}

	return u.String(), nil
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
