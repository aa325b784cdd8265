package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the entire application configuration
type Config struct {
	Cache     CacheConfig     `mapstructure:"cache"`
	Transport TransportConfig `mapstructure:"transport"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	RootDir             string `mapstructure:"root_dir"`
	BufferSizeKB        int    `mapstructure:"buffer_size_kb"`
	ProgressLogInterval string `mapstructure:"progress_log_interval"`
}

// TransportConfig contains the transport option surface
type TransportConfig struct {
	ConnectTimeout  string `mapstructure:"connect_timeout"`
	TransferTimeout string `mapstructure:"transfer_timeout"`
	FollowRedirects bool   `mapstructure:"follow_redirects"`

	SSLEngine         string `mapstructure:"ssl_engine"`
	ClientCert        string `mapstructure:"client_cert"`
	ClientKey         string `mapstructure:"client_key"`
	ClientKeyPassword string `mapstructure:"client_key_password"`
	CAFile            string `mapstructure:"ca_file"`
	CAPath            string `mapstructure:"ca_path"`
	SkipVerifyPeer    bool   `mapstructure:"skip_verify_peer"`

	ProxyURL      string `mapstructure:"proxy_url"`
	ProxyUsername string `mapstructure:"proxy_username"`
	ProxyPassword string `mapstructure:"proxy_password"`

	AuthUsername string `mapstructure:"auth_username"`
	AuthPassword string `mapstructure:"auth_password"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"` // rotating log file, stderr when empty
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DatabaseConfig contains fetch-history database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"` // defaults to <cache.root_dir>/fetch.db
}

// Load loads configuration from the specified file path
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Set defaults
	viper.SetDefault("cache.root_dir", "/var/cache/pkgfetch")
	viper.SetDefault("cache.buffer_size_kb", 256)
	viper.SetDefault("cache.progress_log_interval", "10s")
	viper.SetDefault("transport.connect_timeout", "30s")
	viper.SetDefault("transport.transfer_timeout", "0s")
	viper.SetDefault("transport.follow_redirects", true)
	viper.SetDefault("transport.skip_verify_peer", false)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.max_size_mb", 50)
	viper.SetDefault("logging.max_backups", 3)
	viper.SetDefault("logging.max_age_days", 28)
	viper.SetDefault("database.path", "")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Cache.RootDir == "" {
		return fmt.Errorf("cache.root_dir is required")
	}

	if _, err := time.ParseDuration(c.Cache.ProgressLogInterval); err != nil {
		return fmt.Errorf("invalid cache.progress_log_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.Transport.ConnectTimeout); err != nil {
		return fmt.Errorf("invalid transport.connect_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Transport.TransferTimeout); err != nil {
		return fmt.Errorf("invalid transport.transfer_timeout: %w", err)
	}

	if (c.Transport.ClientCert == "") != (c.Transport.ClientKey == "") {
		return fmt.Errorf("transport.client_cert and transport.client_key must be set together")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// GetProgressLogInterval returns the progress log interval as time.Duration
func (c *CacheConfig) GetProgressLogInterval() time.Duration {
	d, _ := time.ParseDuration(c.ProgressLogInterval)
	if d == 0 {
		return 10 * time.Second
	}
	return d
}

// GetBufferSize returns the transfer buffer size in bytes
func (c *CacheConfig) GetBufferSize() int {
	if c.BufferSizeKB <= 0 {
		return 256 * 1024
	}
	return c.BufferSizeKB * 1024
}

// GetConnectTimeout returns the connect timeout as time.Duration
func (c *TransportConfig) GetConnectTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ConnectTimeout)
	return d
}

// GetTransferTimeout returns the transfer timeout as time.Duration
func (c *TransportConfig) GetTransferTimeout() time.Duration {
	d, _ := time.ParseDuration(c.TransferTimeout)
	return d
}
