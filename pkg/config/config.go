// Package config provides configuration management for the statistics
// analyzer.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Parser ParserConfig `mapstructure:"parser"`
	Log    LogConfig    `mapstructure:"log"`
}

// ParserConfig holds tunables for the statistics file scanners.
type ParserConfig struct {
	// BufferSize is the chunk size for the position index pass, in bytes.
	BufferSize int `mapstructure:"buffer_size"`

	// Delimiter is the record field separator; a single character.
	Delimiter string `mapstructure:"delimiter"`

	// ProgressInterval throttles progress notifications, in seconds.
	ProgressInterval int `mapstructure:"progress_interval"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
}

// Load reads configuration from the specified file path. A missing file is
// not an error; defaults and environment overrides still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/vstats-analysis")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file, run on defaults.
		} else if os.IsNotExist(err) {
			// Explicit path that does not exist, run on defaults.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("VSTATS")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadFromReader loads configuration from raw content (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in defaults.
func Default() *Config {
	cfg, _ := LoadFromReader("yaml", nil)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("parser.buffer_size", 1<<20)
	v.SetDefault("parser.delimiter", ";")
	v.SetDefault("parser.progress_interval", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Parser.BufferSize < 1 {
		return fmt.Errorf("parser buffer size must be positive")
	}
	if len(c.Parser.Delimiter) != 1 {
		return fmt.Errorf("parser delimiter must be a single character, got %q", c.Parser.Delimiter)
	}
	if c.Parser.ProgressInterval < 0 {
		return fmt.Errorf("progress interval must not be negative")
	}
	return nil
}

// DelimiterByte returns the configured delimiter as a byte.
func (c *Config) DelimiterByte() byte {
	return c.Parser.Delimiter[0]
}
