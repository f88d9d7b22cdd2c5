// Package config loads chumtree settings from a YAML file, CHUMTREE_
// environment variables and command-line flags through viper.
package config

// Defaults for every configuration key.
const (
	// DefaultOutput is the manifest format written when none is chosen.
	DefaultOutput = "json"

	// DefaultWorkers of 0 lets the tuner pick a count for the host.
	DefaultWorkers = 0

	// DefaultProgress shows the progress line on stderr.
	DefaultProgress = true

	// DefaultLogLevel is the level of the log file.
	DefaultLogLevel = "info"

	// DefaultLogMaxSize is the size that rotates the log file.
	DefaultLogMaxSize = "10MiB"

	// DefaultLogMaxBackups is the number of rotated log files kept.
	DefaultLogMaxBackups = 5

	// DefaultLogMaxAge is the age in days after which rotated logs are removed.
	DefaultLogMaxAge = 30

	// EnvPrefix prefixes environment overrides, e.g. CHUMTREE_WORKERS.
	EnvPrefix = "CHUMTREE"

	appName        = "chumtree"
	configName     = "config"
	configType     = "yaml"
	configFileName = configName + "." + configType
)

// DefaultExclusions is empty: every entry is recorded unless excluded explicitly.
var DefaultExclusions = []string{}

// DefaultComponentLevels sets per-component log levels.
var DefaultComponentLevels = map[string]string{
	"walker": "info",
	"cli":    "info",
}
