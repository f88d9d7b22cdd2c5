package main

import (
	"fmt"
	"maps"

	"github.com/jamesainslie/chumtree/pkg/chumtree/config"
	"github.com/jamesainslie/chumtree/pkg/chumtree/logging"
	"github.com/jamesainslie/chumtree/pkg/chumtree/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cfg is the configuration resolved for the running command.
var cfg *config.Config

// logger is the CLI's component logger. It discards until logging.Init.
var logger = logging.Get("cli")

// initializeLogging is the root PersistentPreRunE hook. It reads the
// config file, makes sure the state directory exists and starts logging.
func initializeLogging(_ *cobra.Command, _ []string) error {
	v := viper.GetViper()
	if err := config.Read(v); err != nil {
		return err
	}

	c, err := config.Decode(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = c

	if err := config.EnsureStateDir(); err != nil {
		return err
	}

	if err := logging.Init(buildLoggingConfig(c, getQuiet(), getVerbose())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "file", used)
	}
	return nil
}

// buildLoggingConfig maps the logging section of the config onto
// logging.Config. --quiet silences the console; --verbose lowers every
// level to debug.
func buildLoggingConfig(c *config.Config, quiet, verbose bool) logging.Config {
	lc := logging.Config{
		Level:        c.Logging.Level,
		Path:         c.Logging.Path,
		Rotation:     parseRotationConfig(c.Logging.Rotation),
		Components:   maps.Clone(c.Logging.Components),
		ConsoleLevel: "warn",
	}

	if verbose {
		lc.Level = logging.LevelDebug.String()
		lc.ConsoleLevel = logging.LevelDebug.String()
		for comp := range lc.Components {
			lc.Components[comp] = logging.LevelDebug.String()
		}
	}
	if quiet {
		lc.ConsoleLevel = ""
	}
	return lc
}

// parseRotationConfig converts rotation settings, falling back to the
// default size when max_size is empty or malformed.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	out := logging.RotationConfig{
		MaxSize:    logging.DefaultRotationConfig().MaxSize,
		MaxBackups: rc.MaxBackups,
		MaxAge:     rc.MaxAge,
	}

	if rc.MaxSize != "" {
		size, err := types.ParseSize(rc.MaxSize)
		if err != nil || size == 0 {
			logger.Warn("invalid logging.rotation.max_size, using default", "value", rc.MaxSize, "err", err)
		} else {
			out.MaxSize = size
		}
	}
	return out
}
