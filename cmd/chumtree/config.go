package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jamesainslie/chumtree/pkg/chumtree/config"
	"github.com/jamesainslie/chumtree/pkg/chumtree/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage chumtree configuration settings.

Configuration is loaded from:
  1. the file given with --config
  2. $XDG_CONFIG_HOME/chumtree/config.yaml (if set)
  3. ~/.config/chumtree/config.yaml

Environment variables can override config file settings using the CHUMTREE_ prefix:
  CHUMTREE_WORKERS=4
  CHUMTREE_OUTPUT=summary
  CHUMTREE_LOGGING_LEVEL=debug`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:               "init",
	Short:             "Create default configuration file",
	Long:              `Create a default configuration file if one doesn't exist.`,
	PersistentPreRunE: skipConfig,
	RunE:              runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:               "path",
	Short:             "Show configuration file path",
	Long:              `Display the path to the configuration file.`,
	PersistentPreRunE: skipConfig,
	RunE:              runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// skipConfig replaces initializeLogging for commands that must work
// before a config file exists.
func skipConfig(_ *cobra.Command, _ []string) error { return nil }

// runConfigShow displays the current configuration.
func runConfigShow(_ *cobra.Command, _ []string) error {
	c := cfg
	if c == nil {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			printError("Failed to load configuration: %v", err)
			return err
		}
		c = loaded
	}

	showConfig(os.Stdout, c, viper.ConfigFileUsed())
	return nil
}

// showConfig prints c in the layout of the config file.
func showConfig(w io.Writer, c *config.Config, file string) {
	if file != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", file)
	} else {
		fmt.Fprintln(w, "Config file: (using defaults, no file found)")
		fmt.Fprintln(w)
	}

	logPath := c.Logging.Path
	if logPath == "" {
		logPath = logging.DefaultLogPath()
	}

	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "exclude:                       %v\n", c.Exclude)
	fmt.Fprintf(w, "workers:                       %d\n", c.Workers)
	fmt.Fprintf(w, "output:                        %s\n", c.Output)
	fmt.Fprintf(w, "progress:                      %t\n", c.Progress)
	fmt.Fprintf(w, "logging.level:                 %s\n", c.Logging.Level)
	fmt.Fprintf(w, "logging.path:                  %s\n", logPath)
	fmt.Fprintf(w, "logging.rotation.max_size:     %s\n", c.Logging.Rotation.MaxSize)
	fmt.Fprintf(w, "logging.rotation.max_backups:  %d\n", c.Logging.Rotation.MaxBackups)
	fmt.Fprintf(w, "logging.rotation.max_age:      %d days\n", c.Logging.Rotation.MaxAge)

	comps := make([]string, 0, len(c.Logging.Components))
	for comp := range c.Logging.Components {
		comps = append(comps, comp)
	}
	sort.Strings(comps)
	for _, comp := range comps {
		fmt.Fprintf(w, "logging.components.%-11s %s\n", comp+":", c.Logging.Components[comp])
	}

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	envVars := []string{
		"CHUMTREE_EXCLUDE",
		"CHUMTREE_WORKERS",
		"CHUMTREE_OUTPUT",
		"CHUMTREE_PROGRESS",
		"CHUMTREE_LOGGING_LEVEL",
		"CHUMTREE_LOGGING_PATH",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(w, "%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(w, "(none)")
	}
}

// runConfigInit creates a default config file.
func runConfigInit(_ *cobra.Command, _ []string) error {
	path, created, err := config.WriteDefault(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if !created {
		printInfo("Config file already exists: %s", path)
		return nil
	}
	printInfo("Created default config file: %s", path)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(_ *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return err
		}
	}

	fmt.Println(path)

	if _, err := os.Stat(path); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}

	return nil
}
