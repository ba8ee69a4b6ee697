// Package config handles configuration loading for asharemcp.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Source  SourceConfig  `mapstructure:"source"  yaml:"source"`
	Render  RenderConfig  `mapstructure:"render"  yaml:"render"`
	News    NewsConfig    `mapstructure:"news"    yaml:"news"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig holds MCP transport settings.
type ServerConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"` // "stdio" or "http"
	HTTPAddr  string `mapstructure:"http_addr" yaml:"http_addr"` // listen address for the http transport
}

// SourceConfig holds upstream data source settings.
type SourceConfig struct {
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// RenderConfig holds output rendering settings.
type RenderConfig struct {
	DefaultLimit int `mapstructure:"default_limit" yaml:"default_limit"` // default row cap per tool result
}

// NewsConfig holds market news feed settings. Feeds are "Name=URL"
// entries; an empty list selects the built-in defaults.
type NewsConfig struct {
	Feeds []string `mapstructure:"feeds" yaml:"feeds"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.asharemcp/config.yaml (home directory)
//  3. /etc/asharemcp/config.yaml (system)
//
// Environment variables override config file values.
// Format: ASHAREMCP_<SECTION>_<KEY>, e.g., ASHAREMCP_SERVER_TRANSPORT
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".asharemcp"))
	v.AddConfigPath("/etc/asharemcp")

	v.SetEnvPrefix("ASHAREMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("ASHAREMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.http_addr", ":8080")

	v.SetDefault("source.timeout_sec", 30)

	v.SetDefault("render.default_limit", 250)

	v.SetDefault("news.feeds", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
