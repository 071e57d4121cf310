package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all folio configuration.
type Config struct {
	// Runtime environment: development or production
	Env string `yaml:"env"`

	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Mail     MailConfig     `yaml:"mail"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	SessionSecret   string        `yaml:"session_secret"`
	SecureCookies   bool          `yaml:"secure_cookies"`
	SessionMaxAge   time.Duration `yaml:"session_max_age"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects and configures the relational store.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // sqlite, postgres
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	LogQueries   bool   `yaml:"log_queries"`
}

// MailConfig configures workflow notifications.
type MailConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Protocol    string        `yaml:"protocol"` // smtp, dummy
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	From        string        `yaml:"from"`
	Recipient   string        `yaml:"recipient"`
	QueueSize   int           `yaml:"queue_size"`
	SendTimeout time.Duration `yaml:"send_timeout"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Addr:            ":3000",
			SessionSecret:   "",
			SessionMaxAge:   24 * time.Hour,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			DSN:          defaultSQLitePath(),
			MaxOpenConns: 10,
		},
		Mail: MailConfig{
			Protocol:    "smtp",
			Port:        587,
			QueueSize:   100,
			SendTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultSQLitePath returns ~/.folio/folio.db
func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "folio.db"
	}
	return filepath.Join(home, ".folio", "folio.db")
}

// Load reads a YAML file on top of the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// applyEnv overrides file values with the variables the site was deployed with.
func (c *Config) applyEnv() {
	if v := os.Getenv("FOLIO_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Server.SessionSecret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
		c.Database.Driver = "postgres"
	}
	if v := os.Getenv("FOLIO_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("NOTIFY_EMAIL"); v != "" {
		c.Mail.Recipient = v
		c.Mail.Enabled = true
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.Mail.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Mail.Port = port
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		c.Mail.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Mail.Password = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		c.Mail.From = v
	}

	if c.IsProduction() {
		c.Server.SecureCookies = true
	}
}

// IsProduction reports whether the site runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks the values serve depends on.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q (use sqlite or postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	if c.IsProduction() && len(c.Server.SessionSecret) < 32 {
		return errors.New("session_secret must be at least 32 bytes in production")
	}
	switch c.Mail.Protocol {
	case "smtp", "dummy":
	default:
		return fmt.Errorf("unknown mail protocol %q (use smtp or dummy)", c.Mail.Protocol)
	}
	if c.Mail.Enabled && c.Mail.Protocol == "smtp" && c.Mail.Host == "" {
		return errors.New("mail.host is required when smtp notifications are enabled")
	}
	if c.Mail.QueueSize <= 0 {
		return errors.New("mail.queue_size must be positive")
	}
	return nil
}
