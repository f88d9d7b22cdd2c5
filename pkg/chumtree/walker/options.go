package walker

import (
	"errors"
	"time"

	"github.com/jamesainslie/chumtree/pkg/chumtree/exclude"
	"github.com/jamesainslie/chumtree/pkg/chumtree/logging"
	"github.com/jamesainslie/chumtree/pkg/chumtree/types"
)

// DefaultProgressInterval is the minimum time between two progress reports.
const DefaultProgressInterval = 100 * time.Millisecond

// ErrNoRoot is returned by Validate when no root directory is set.
var ErrNoRoot = errors.New("root directory is required")

// Options configures a walk.
type Options struct {
	// Root is the directory to describe.
	Root string

	// BaseDir is recorded verbatim as the manifest's base directory.
	// Empty means Root.
	BaseDir string

	// Exclude skips matching entries; excluded directories are not descended.
	// A nil matcher excludes nothing.
	Exclude *exclude.Matcher

	// Workers is the number of goroutines visiting entries and hashing
	// files. 1 walks single-threaded; 0 or less uses fastwalk's default.
	Workers int

	// Started is the invocation timestamp stamped into the manifest.
	// Zero means the time Walk is called.
	Started time.Time

	// OnProgress is called at most once per ProgressInterval, and always
	// at the start and end of the walk. It may be called from any worker.
	OnProgress func(types.Progress)

	// ProgressInterval throttles OnProgress. Zero uses DefaultProgressInterval.
	ProgressInterval time.Duration

	// Logger receives per-entry warnings. Nil uses the "walker" component logger.
	Logger *logging.Logger
}

// DefaultOptions returns options that walk the current directory with
// fastwalk's default parallelism.
func DefaultOptions() Options {
	return Options{
		Root:             ".",
		ProgressInterval: DefaultProgressInterval,
	}
}

// Validate checks the options and fills in defaults.
func (o *Options) Validate() error {
	if o.Root == "" {
		return ErrNoRoot
	}
	if o.BaseDir == "" {
		o.BaseDir = o.Root
	}
	if o.Workers < 0 {
		o.Workers = 0
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = DefaultProgressInterval
	}
	if o.Logger == nil {
		o.Logger = logging.Get("walker")
	}
	return nil
}
