//go:build !darwin && !linux

package tuner

import (
	"runtime"

	"github.com/jamesainslie/chumtree/pkg/chumtree/types"
)

// defaultTotalRAM is assumed where memory cannot be queried.
const defaultTotalRAM = 8 * types.GiB

// Detect reports the CPU count and assumes 8 GiB of memory, half available.
func Detect() (SystemResources, error) {
	return SystemResources{
		CPUCores:     runtime.NumCPU(),
		TotalRAM:     defaultTotalRAM,
		AvailableRAM: defaultTotalRAM / 2,
	}, nil
}
