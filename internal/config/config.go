package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Cache     CacheConfig     `yaml:"cache"`
	Serial    SerialConfig    `yaml:"serial"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig selects and configures the document store driver
type StoreConfig struct {
	Type            string `yaml:"type"` // "memory" or "firestore"
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// CacheConfig controls the read-through TTL cache in front of the store
type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// SerialConfig controls daily serial number stamping on check-ins
type SerialConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SendGridConfig contains email notification settings
type SendGridConfig struct {
	APIKey      string `yaml:"api_key"`
	FromEmail   string `yaml:"from_email"`
	FromName    string `yaml:"from_name"`
	NotifyEmail string `yaml:"notify_email"`
}

// SchedulerConfig contains cron specs for background jobs
type SchedulerConfig struct {
	RentDueSweep   string `yaml:"rent_due_sweep"`
	CounterCleanup string `yaml:"counter_cleanup"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Store
	if val := os.Getenv("STORE_TYPE"); val != "" {
		c.Store.Type = val
	}
	if val := os.Getenv("FIRESTORE_PROJECT_ID"); val != "" {
		c.Store.ProjectID = val
	}
	if val := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); val != "" && c.Store.CredentialsFile == "" {
		c.Store.CredentialsFile = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}
	if val := os.Getenv("NOTIFY_EMAIL"); val != "" {
		c.SendGrid.NotifyEmail = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Store.Type {
	case "", "memory":
		c.Store.Type = "memory"
	case "firestore":
		if c.Store.ProjectID == "" {
			return fmt.Errorf("firestore project_id is required")
		}
	default:
		return fmt.Errorf("unknown store type: %q", c.Store.Type)
	}

	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache ttl_seconds cannot be negative")
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 5
	}

	if c.SendGrid.APIKey != "" {
		if c.SendGrid.FromEmail == "" {
			return fmt.Errorf("sendgrid from_email is required when api_key is set")
		}
		if c.SendGrid.NotifyEmail == "" {
			return fmt.Errorf("sendgrid notify_email is required when api_key is set")
		}
	}

	// Scheduler defaults
	if c.Scheduler.RentDueSweep == "" {
		c.Scheduler.RentDueSweep = "0 0 * * * *" // hourly
	}
	if c.Scheduler.CounterCleanup == "" {
		c.Scheduler.CounterCleanup = "0 0 3 * * *" // 3 AM UTC
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	return nil
}
