// Package config loads calcshell settings from defaults, an optional calc.yaml, .env files,
// CALC_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by calcshell.
const EnvPrefix = "CALC"

// DefaultEnv is the deployment profile used when ENV is unset.
const DefaultEnv = "prod"

// Config holds the validated calcshell settings.
type Config struct {
	HistoryDir     string `mapstructure:"history_dir" validate:"required"`
	HistoryFile    string `mapstructure:"history_file" validate:"required"`
	FlushPolicy    string `mapstructure:"flush_policy" validate:"oneof=flush-each stage-then-flush"`
	FlushThreshold int    `mapstructure:"flush_threshold" validate:"gte=0"`
	LogLevel       string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error fatal"`
	LogFile        string `mapstructure:"log_file"`
	Env            string `mapstructure:"env" validate:"omitempty,oneof=dev uat prod"`
	Theme          string `mapstructure:"theme" validate:"oneof=default dark light plain"`
	MetricsFile    string `mapstructure:"metrics_file"`
	TestMode       bool   `mapstructure:"test_mode"`
}

var validate = validator.New()

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("history_dir", "data")
	v.SetDefault("history_file", "history.csv")
	v.SetDefault("flush_policy", "flush-each")
	v.SetDefault("flush_threshold", 0)
	v.SetDefault("log_level", "")
	v.SetDefault("log_file", "calc.log")
	v.SetDefault("env", DefaultEnv)
	v.SetDefault("theme", "default")
	v.SetDefault("metrics_file", "")
	v.SetDefault("test_mode", false)
}

// ConfigDir returns the calcshell configuration directory: $XDG_CONFIG_HOME/calcshell when
// XDG_CONFIG_HOME is set, the current directory otherwise.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "calcshell")
	}
	return "."
}

// Load resolves the configuration into a validated Config. Flags must already be bound to v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	configDir := ConfigDir()
	if err := loadDotEnv(configDir); err != nil {
		return nil, err
	}

	v.SetConfigName("calc")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The deployment profile is also honoured from a bare ENV variable.
	if err := v.BindEnv("env", EnvPrefix+"_ENV", "ENV"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.HistoryDir = strings.TrimSpace(cfg.HistoryDir)
	cfg.HistoryFile = strings.TrimSpace(cfg.HistoryFile)
	cfg.FlushPolicy = strings.ToLower(strings.TrimSpace(cfg.FlushPolicy))
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the field constraints of c.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid config value for %s: %q fails %q", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HistoryPath returns the configured active history file, resolved against HistoryDir when
// relative.
func (c *Config) HistoryPath() string {
	if filepath.IsAbs(c.HistoryFile) {
		return c.HistoryFile
	}
	return filepath.Join(c.HistoryDir, c.HistoryFile)
}

// loadDotEnv loads .env from the config directory and then the working directory. Variables
// already present in the environment are never overridden.
func loadDotEnv(configDir string) error {
	paths := []string{filepath.Join(configDir, ".env")}
	if configDir != "." {
		paths = append(paths, ".env")
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue // Missing .env file is not an error
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load .env file %s: %w", path, err)
		}
	}
	return nil
}
