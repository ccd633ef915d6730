package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	JWT     JWTConfig
	Connect ConnectConfig
	NATS    NATSConfig
	Unread  UnreadConfig
	Stats   StatsConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// ConnectConfig holds the upstream LetUsConnect API configuration
type ConnectConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// NATSConfig holds pub/sub transport configuration
type NATSConfig struct {
	URL string
}

// UnreadConfig holds unread-count aggregation retry configuration
type UnreadConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// StatsConfig holds notification stats refresh configuration
type StatsConfig struct {
	RefreshInterval time.Duration
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Upstream API configuration
	connectTimeout, err := time.ParseDuration(getEnv("CONNECT_API_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONNECT_API_TIMEOUT: %w", err)
	}

	config.Connect = ConnectConfig{
		BaseURL:  getEnv("CONNECT_API_URL", ""),
		APIToken: getEnv("CONNECT_API_TOKEN", ""),
		Timeout:  connectTimeout,
	}

	// NATS configuration
	config.NATS = NATSConfig{
		URL: getEnv("NATS_URL", "nats://localhost:4222"),
	}

	// Unread aggregation configuration
	maxRetries, err := strconv.Atoi(getEnv("UNREAD_MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid UNREAD_MAX_RETRIES: %w", err)
	}
	retryDelay, err := time.ParseDuration(getEnv("UNREAD_RETRY_DELAY", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid UNREAD_RETRY_DELAY: %w", err)
	}

	config.Unread = UnreadConfig{
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
	}

	// Stats refresh configuration
	refreshInterval, err := time.ParseDuration(getEnv("STATS_REFRESH_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_REFRESH_INTERVAL: %w", err)
	}

	config.Stats = StatsConfig{
		RefreshInterval: refreshInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Connect.BaseURL == "" {
		return fmt.Errorf("CONNECT_API_URL is required")
	}
	if c.Connect.APIToken == "" {
		return fmt.Errorf("CONNECT_API_TOKEN is required")
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required")
	}
	if c.Unread.MaxRetries < 0 {
		return fmt.Errorf("UNREAD_MAX_RETRIES must not be negative")
	}
	if c.Unread.RetryDelay <= 0 {
		return fmt.Errorf("UNREAD_RETRY_DELAY must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
