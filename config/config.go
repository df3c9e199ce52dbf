package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"propertyhub.app/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server     ServerConfig   `split_words:"true"`
	Database   DatabaseConfig `split_words:"true"`
	Redis      RedisConfig    `split_words:"true"`
	Queue      QueueConfig    `split_words:"true"`
	Email      EmailConfig    `split_words:"true"`
	Cache      CacheConfig    `split_words:"true"`
	AppBaseURL string         `envconfig:"APP_URL" default:"http://localhost:8080"`
}

// ServerConfig contains HTTP admin server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"propertyhub"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// GetDSN returns a formatted database connection string
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig contains cache backend connection settings
type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

// QueueConfig contains job queue backend settings
type QueueConfig struct {
	URL            string `envconfig:"NATS_URL" default:"nats://localhost:4222"`
	StreamName     string `envconfig:"QUEUE_STREAM_NAME" default:"PROPERTYHUB_JOBS"`
	MaxAttempts    int    `envconfig:"QUEUE_MAX_ATTEMPTS" default:"2"`
	BackoffDelayMs int    `envconfig:"QUEUE_BACKOFF_DELAY_MS" default:"5000"`
	AckWaitSeconds int    `envconfig:"QUEUE_ACK_WAIT_SECONDS" default:"30"`
}

// EmailConfig contains email server and sending settings
type EmailConfig struct {
	SMTPHost     string `envconfig:"EMAIL_SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort     int    `envconfig:"EMAIL_SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"EMAIL_SMTP_USERNAME" required:"true"`
	SMTPPassword string `envconfig:"EMAIL_SMTP_PASSWORD" required:"true"`
	FromName     string `envconfig:"EMAIL_FROM_NAME" default:"PropertyHub"`
	FromAddress  string `envconfig:"EMAIL_FROM_ADDRESS" default:"no-reply@propertyhub.app"`
}

// CacheConfig contains TTL settings for the cache facades
type CacheConfig struct {
	ReportTTLSeconds  int `envconfig:"CACHE_REPORT_TTL_SECONDS" default:"300"`
	CommentTTLSeconds int `envconfig:"CACHE_COMMENT_TTL_SECONDS" default:"300"`
	SessionTTLSeconds int `envconfig:"CACHE_SESSION_TTL_SECONDS" default:"120"`
	DefaultTTLSeconds int `envconfig:"CACHE_DEFAULT_TTL_SECONDS" default:"120"`
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Queue.Validate(); err != nil {
		return err
	}
	if err := c.Email.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.validateAppBaseURL(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAppBaseURL() error {
	if c.AppBaseURL == "" {
		return errors.NewConfigurationError("APP_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(c.AppBaseURL, "http://") && !strings.HasPrefix(c.AppBaseURL, "https://") {
		return errors.NewConfigurationError("APP_URL must start with http:// or https://", nil)
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// ValidateSSLMode validates the SSL mode configuration
func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

// Validate checks database configuration
func (d *DatabaseConfig) Validate() error {
	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > 65535 {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	if err := d.ValidateSSLMode(); err != nil {
		return err
	}
	return nil
}

// Validate checks cache backend configuration
func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty", nil)
	}
	if r.DB < 0 {
		return errors.NewConfigurationError("REDIS_DB cannot be negative", nil)
	}
	if r.DialTimeout < 1 {
		return errors.NewConfigurationError("REDIS_DIAL_TIMEOUT must be at least 1 second", nil)
	}
	if r.ReadTimeout < 1 || r.WriteTimeout < 1 {
		return errors.NewConfigurationError("REDIS_READ_TIMEOUT and REDIS_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

// Validate checks job queue configuration
func (q *QueueConfig) Validate() error {
	if q.URL == "" {
		return errors.NewConfigurationError("NATS_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(q.URL, "nats://") && !strings.HasPrefix(q.URL, "tls://") {
		return errors.NewConfigurationError("NATS_URL must start with nats:// or tls://", nil)
	}
	if q.StreamName == "" {
		return errors.NewConfigurationError("QUEUE_STREAM_NAME cannot be empty", nil)
	}
	if q.MaxAttempts < 1 {
		return errors.NewConfigurationError("QUEUE_MAX_ATTEMPTS must be at least 1", nil)
	}
	if q.BackoffDelayMs < 0 {
		return errors.NewConfigurationError("QUEUE_BACKOFF_DELAY_MS cannot be negative", nil)
	}
	if q.AckWaitSeconds < 1 {
		return errors.NewConfigurationError("QUEUE_ACK_WAIT_SECONDS must be at least 1", nil)
	}
	return nil
}

// Validate checks email configuration
func (e *EmailConfig) Validate() error {
	if e.SMTPHost == "" {
		return errors.NewConfigurationError("EMAIL_SMTP_HOST cannot be empty", nil)
	}
	if e.SMTPPort < 1 || e.SMTPPort > 65535 {
		return errors.NewConfigurationError("EMAIL_SMTP_PORT must be between 1 and 65535", nil)
	}
	if e.SMTPUsername == "" {
		return errors.NewConfigurationError("EMAIL_SMTP_USERNAME is required", nil)
	}
	if e.SMTPPassword == "" {
		return errors.NewConfigurationError("EMAIL_SMTP_PASSWORD is required", nil)
	}
	if e.FromName == "" {
		return errors.NewConfigurationError("EMAIL_FROM_NAME cannot be empty", nil)
	}
	if e.FromAddress == "" {
		return errors.NewConfigurationError("EMAIL_FROM_ADDRESS cannot be empty", nil)
	}
	if !strings.Contains(e.FromAddress, "@") {
		return errors.NewConfigurationError("EMAIL_FROM_ADDRESS must be a valid email address", nil)
	}
	return nil
}

// Validate checks cache TTL configuration
func (c *CacheConfig) Validate() error {
	if c.ReportTTLSeconds < 1 {
		return errors.NewConfigurationError("CACHE_REPORT_TTL_SECONDS must be at least 1", nil)
	}
	if c.CommentTTLSeconds < 1 {
		return errors.NewConfigurationError("CACHE_COMMENT_TTL_SECONDS must be at least 1", nil)
	}
	if c.SessionTTLSeconds < 1 {
		return errors.NewConfigurationError("CACHE_SESSION_TTL_SECONDS must be at least 1", nil)
	}
	if c.DefaultTTLSeconds < 1 {
		return errors.NewConfigurationError("CACHE_DEFAULT_TTL_SECONDS must be at least 1", nil)
	}
	return nil
}
