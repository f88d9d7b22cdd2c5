package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/jamesainslie/chumtree/pkg/chumtree/logging"
)

// ErrInvalidWorkers is returned for a negative worker count.
var ErrInvalidWorkers = errors.New("workers must not be negative")

// RotationConfig configures log rotation. MaxSize is a size string such as "10MiB".
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// Config is the resolved chumtree configuration.
type Config struct {
	// Exclude holds glob patterns applied to every walk in addition to
	// the ones given on the command line.
	Exclude []string `mapstructure:"exclude"`

	// Workers is the walker parallelism. 0 picks automatically, 1 walks
	// single-threaded.
	Workers int `mapstructure:"workers"`

	// Output is the manifest format.
	Output string `mapstructure:"output"`

	// Progress enables the progress line on stderr.
	Progress bool `mapstructure:"progress"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks values viper cannot check by type.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	for comp, lvl := range c.Logging.Components {
		if _, err := logging.ParseLevel(lvl); err != nil {
			return fmt.Errorf("logging.components.%s: %w", comp, err)
		}
	}
	return nil
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("progress", DefaultProgress)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.rotation.max_backups", DefaultLogMaxBackups)
	v.SetDefault("logging.rotation.max_age", DefaultLogMaxAge)
	v.SetDefault("logging.components", DefaultComponentLevels)
}

// Setup points v at the config file, enables CHUMTREE_ environment
// overrides and registers defaults. A non-empty file replaces the search
// of $XDG_CONFIG_HOME/chumtree and ~/.config/chumtree.
func Setup(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, appName))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", appName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// Read reads the config file into v. A missing file is not an error
// unless it was named explicitly.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	path, err := ExpandPath(cfg.Logging.Path)
	if err != nil {
		return nil, err
	}
	cfg.Logging.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from file (or the default locations when empty)
// and the environment.
func Load(file string) (*Config, error) {
	v := viper.New()
	Setup(v, file)
	if err := Read(v); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ConfigDir returns $XDG_CONFIG_HOME/chumtree, or ~/.config/chumtree.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigPath returns the default config file location.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// StateDir returns $XDG_STATE_HOME/chumtree, where logs are written.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// EnsureStateDir creates StateDir.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a commented default config file to path, or to
// ConfigPath when path is empty. An existing file is left alone and
// reported with created == false.
func WriteDefault(path string) (written string, created bool, err error) {
	if path == "" {
		if path, err = ConfigPath(); err != nil {
			return "", false, err
		}
	}

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultFile()), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write default config: %w", err)
	}
	return path, true, nil
}

func defaultFile() string {
	return fmt.Sprintf(`# chumtree configuration

# Glob patterns excluded from every walk, matched against paths relative
# to the walked directory, e.g. "**/.DS_Store" or "node_modules".
exclude: []

# Walker goroutines. 0 picks a count from CPU and memory, 1 walks
# single-threaded.
workers: %d

# Manifest format: json, yaml, summary or plain.
output: %s

# Show a progress line on stderr while walking.
progress: %t

logging:
  # debug, info, warn or error
  level: %s
  # Empty means $XDG_STATE_HOME/chumtree/chumtree.log
  path: ""
  rotation:
    max_size: %s
    max_backups: %d
    max_age: %d # days
  components:
    walker: info
    cli: info
`, DefaultWorkers, DefaultOutput, DefaultProgress, DefaultLogLevel,
		DefaultLogMaxSize, DefaultLogMaxBackups, DefaultLogMaxAge)
}
