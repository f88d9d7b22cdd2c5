package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/chumtree/pkg/chumtree/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "chumtree [flags] <dir> [exclude-glob...]",
		Short: "Describe a directory tree as a deterministic manifest",
		Long: `Chumtree walks a directory and prints a manifest of every directory,
symlink and regular file in it, with a content hash for each file.

Walking the same unchanged tree twice yields the same manifest apart from
its timestamp, so two manifests can be compared with 'chumtree diff'.

Exclude globs are matched against paths relative to <dir>. They can be
given after <dir>, with --exclude, or in the config file.

Examples:
  chumtree ~/photos                        # JSON manifest on stdout
  chumtree ~/photos '**/.DS_Store'         # Skip Finder metadata
  chumtree -o summary ~/photos             # Counts and errors only
  chumtree -f before.json ~/photos         # Write the manifest to a file
  chumtree diff before.json after.json     # Compare two manifests
  chumtree config show                     # Show configuration`,
		Args:              cobra.MinimumNArgs(1),
		PersistentPreRunE: initializeLogging,
		RunE:              runScan,
		SilenceUsage:      true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/chumtree/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "no progress or console logging")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Scan flags
	rootCmd.Flags().StringSliceP("exclude", "e", nil, "exclude glob (can be specified multiple times)")
	rootCmd.Flags().StringP("output", "o", config.DefaultOutput, "output format (json, yaml, summary, plain, csv, paths, null)")
	rootCmd.Flags().StringP("out-file", "f", "", "write the manifest to this file instead of stdout")
	rootCmd.Flags().IntP("workers", "w", config.DefaultWorkers, "walker goroutines (0=auto, 1=single-threaded)")
	rootCmd.Flags().Bool("no-progress", false, "hide the progress line")

	// Bind flags to viper. --exclude is merged with the config list
	// instead of replacing it, so it is read from the flag directly.
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
}

// initConfig points viper at the config file, the environment and the
// defaults. The file itself is read in initializeLogging so that errors
// can be returned.
func initConfig() {
	config.Setup(viper.GetViper(), cfgFile)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message to stderr if quiet mode is not enabled.
// Stdout carries the manifest.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
