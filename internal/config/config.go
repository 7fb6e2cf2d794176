package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server ServerConfig

	// Database Configuration
	Database DatabaseConfig

	// Notification Configuration
	Notification NotificationConfig

	// Auth Configuration
	Auth AuthConfig

	// Email Configuration (optional)
	Email EmailConfig

	// Logging Configuration
	Logging LoggingConfig
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host         string `env:"SERVER_HOST" envDefault:""`
	Port         string `env:"SERVER_PORT" envDefault:"8085"`
	ReadTimeout  int    `env:"SERVER_READ_TIMEOUT" envDefault:"15"`
	WriteTimeout int    `env:"SERVER_WRITE_TIMEOUT" envDefault:"15"`
	Environment  string `env:"ENVIRONMENT" envDefault:"development"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	Port         string `env:"DB_PORT" envDefault:"3306"`
	Username     string `env:"DB_USER" envDefault:"usernotify"`
	Password     string `env:"DB_PASSWORD" envDefault:""`
	DatabaseName string `env:"DB_NAME" envDefault:"usernotify"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
}

// NotificationConfig contains dispatch engine configuration
type NotificationConfig struct {
	// Workers bounds how many channel deliveries run concurrently for one
	// firing or revocation.
	Workers int `env:"NOTIF_WORKERS" envDefault:"5"`
	// SendTimeout is the per-channel-call timeout in seconds; a timed-out
	// call is a delivery failure for that recipient and channel only.
	SendTimeout int `env:"NOTIF_SEND_TIMEOUT" envDefault:"10"`
	// CountCacheShards is the shard count of the unread-count cache.
	CountCacheShards int `env:"NOTIF_COUNT_CACHE_SHARDS" envDefault:"32"`
	// Packages is the dependency scope: package IDs whose notifications are
	// visible to count and list queries.
	Packages []int64 `env:"NOTIF_PACKAGES" envDefault:"1" envSeparator:","`
}

// AuthConfig contains JWT configuration for the HTTP API
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET" envDefault:""`
	TokenTTL  int    `env:"JWT_TTL_HOURS" envDefault:"24"`
}

// EmailConfig contains email channel configuration (optional)
type EmailConfig struct {
	SMTPHost  string `env:"SMTP_HOST" envDefault:""`
	SMTPPort  int    `env:"SMTP_PORT" envDefault:"587"`
	Username  string `env:"SMTP_USERNAME" envDefault:""`
	Password  string `env:"SMTP_PASSWORD" envDefault:""`
	FromEmail string `env:"FROM_EMAIL" envDefault:""`
	FromName  string `env:"FROM_NAME" envDefault:"usernotify"`
	Enabled   bool   `env:"EMAIL_ENABLED" envDefault:"false"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (cfg *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) Addr() string {
	return fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
}
