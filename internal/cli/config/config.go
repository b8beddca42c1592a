package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/flow-design/flow-helper/internal/completion"
)

// FileName is the base name of the config file, without extension
const FileName = "flow-helper"

// EnvPrefix prefixes environment overrides, e.g. FLOW_HELPER_INDENT_SIZE
const EnvPrefix = "FLOW_HELPER"

// Config represents the flow-helper configuration
type Config struct {
	IndentSize int       `mapstructure:"indent_size" yaml:"indent_size"`
	Quotes     string    `mapstructure:"quotes" yaml:"quotes"`
	Catalog    string    `mapstructure:"catalog" yaml:"catalog,omitempty"`
	Log        LogConfig `mapstructure:"log" yaml:"log"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Default returns the configuration used when no file or environment
// variable sets a key
func Default() *Config {
	return &Config{
		IndentSize: 2,
		Quotes:     "double",
		Log:        LogConfig{Level: "info"},
	}
}

// ToOptions converts the file settings to completion options
func (c *Config) ToOptions() completion.Options {
	return completion.Options{
		IndentSize: c.IndentSize,
		Quote:      completion.QuoteFor(c.Quotes),
	}
}

// LogLevel returns the parsed log level
func (c *Config) LogLevel() zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Loader reads the configuration with viper and can follow changes to the
// file it read
type Loader struct {
	mu sync.Mutex
	v  *viper.Viper

	logger *zap.Logger
}

// NewLoader creates a loader. An explicit file path skips the search of the
// working directory and $HOME/.config/flow-helper.
func NewLoader(file string) *Loader {
	v := viper.New()

	defaults := Default()
	v.SetDefault("indent_size", defaults.IndentSize)
	v.SetDefault("quotes", defaults.Quotes)
	v.SetDefault("catalog", defaults.Catalog)
	v.SetDefault("log.level", defaults.Log.Level)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, logger: zap.NewNop()}
}

// SetLogger sets the logger used to report reload failures
func (l *Loader) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l.mu.Lock()
	l.logger = logger
	l.mu.Unlock()
}

// Load reads the config file if there is one and validates the result
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *Loader) load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ConfigFile returns the path of the file read by the last Load, or "" if
// only defaults and environment variables applied
func (l *Loader) ConfigFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the new configuration whenever the config file
// changes. Invalid edits are logged and skipped. It reports false when no
// file was read, since there is nothing to watch.
func (l *Loader) Watch(onChange func(*Config)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.v.ConfigFileUsed() == "" {
		return false
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.mu.Lock()
		config, err := l.load()
		logger := l.logger
		l.mu.Unlock()

		if err != nil {
			logger.Warn("ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		logger.Info("config reloaded", zap.String("file", e.Name), zap.Stringer("op", e.Op))
		onChange(config)
	})
	l.v.WatchConfig()
	return true
}

// Load loads the configuration from flow-helper.{yml,yaml,json}
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// Write saves cfg as YAML at path. An existing file is only replaced when
// overwrite is set.
func Write(path string, cfg *Config, overwrite bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.IndentSize <= 0 {
		return fmt.Errorf("indent_size must be positive, got: %d", cfg.IndentSize)
	}

	switch cfg.Quotes {
	case "single", "double":
	default:
		return fmt.Errorf("quotes must be 'single' or 'double', got: %s", cfg.Quotes)
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level is not a valid level: %s", cfg.Log.Level)
	}
	return nil
}
