// Package config handles application configuration management.
// It supports YAML files and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Publisher PublisherConfig `mapstructure:"publisher" yaml:"publisher"`
	Supabase  SupabaseConfig  `mapstructure:"supabase" yaml:"supabase"`
	Anthropic AnthropicConfig `mapstructure:"anthropic" yaml:"anthropic"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Export    ExportConfig    `mapstructure:"export" yaml:"export"`
}

// PublisherConfig holds the pack metadata defaults stamped into exports
type PublisherConfig struct {
	Name             string `mapstructure:"name" yaml:"name"`
	Email            string `mapstructure:"email" yaml:"email"`
	Website          string `mapstructure:"website" yaml:"website"`
	PrivacyPolicyURL string `mapstructure:"privacy_policy_url" yaml:"privacy_policy_url"`
	LicenseURL       string `mapstructure:"license_url" yaml:"license_url"`
}

// SupabaseConfig holds the backend connection settings
type SupabaseConfig struct {
	URL     string `mapstructure:"url" yaml:"url"`
	AnonKey string `mapstructure:"anon_key" yaml:"anon_key"`
	UserID  string `mapstructure:"user_id" yaml:"user_id"`
}

// AnthropicConfig holds Anthropic API settings
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// CacheConfig holds asset cache settings
type CacheConfig struct {
	Dir            string `mapstructure:"dir" yaml:"dir"`
	FetchTimeout   int    `mapstructure:"fetch_timeout_seconds" yaml:"fetch_timeout_seconds"`
	RetryAttempts  int    `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryDelayMSec int    `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
}

// ExportConfig holds export output settings
type ExportConfig struct {
	OutDir    string `mapstructure:"out_dir" yaml:"out_dir"`
	Watermark string `mapstructure:"watermark" yaml:"watermark"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("anthropic.model", "claude-3-haiku-20240307")
	v.SetDefault("anthropic.max_tokens", 100)
	v.SetDefault("cache.fetch_timeout_seconds", 30)
	v.SetDefault("cache.retry_attempts", 2)
	v.SetDefault("cache.retry_delay_ms", 500)
	v.SetDefault("export.out_dir", ".")

	// Determine config directory
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w", err)
	}

	// Set default cache directory under the config directory
	v.SetDefault("cache.dir", filepath.Join(configDir, "cache"))

	// Configure viper to read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Current directory

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	// Environment variable overrides
	v.SetEnvPrefix("STICKERSMITH")
	v.AutomaticEnv()

	// Specific env var bindings
	_ = v.BindEnv("supabase.anon_key", "SUPABASE_ANON_KEY")
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Save writes the current configuration to file
func Save(cfg *Config) error {
	configDir, err := getConfigDir()
	if err != nil {
		return fmt.Errorf("failed to determine config directory: %w", err)
	}

	// Ensure config directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")

	v := viper.New()
	v.Set("publisher", cfg.Publisher)
	v.Set("supabase", cfg.Supabase)
	v.Set("anthropic", cfg.Anthropic)
	v.Set("cache", cfg.Cache)
	v.Set("export", cfg.Export)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Set restrictive permissions on config file (contains credentials)
	if err := os.Chmod(configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	// Check for STICKERSMITH_CONFIG_DIR env var (Docker can set this to /data)
	if configDir := os.Getenv("STICKERSMITH_CONFIG_DIR"); configDir != "" {
		return configDir, nil
	}

	// Use XDG_CONFIG_HOME if set
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "stickersmith"), nil
	}

	// Fall back to ~/.config/stickersmith
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "stickersmith"), nil
}

// GetConfigDir returns the configuration directory (exported for other packages)
func GetConfigDir() (string, error) {
	return getConfigDir()
}
