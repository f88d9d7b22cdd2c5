// Package tuner picks a walker worker count from the CPU and memory of the
// host. Each worker hashes one file at a time through a one-block buffer,
// so memory bounds the count as well as cores.
package tuner

import "github.com/jamesainslie/chumtree/pkg/chumtree/hasher"

// SystemResources describes the host.
type SystemResources struct {
	// CPUCores is the number of logical CPUs.
	CPUCores int

	// TotalRAM is the physical memory in bytes.
	TotalRAM int64

	// AvailableRAM is an estimate of free memory in bytes.
	AvailableRAM int64
}

const (
	// MaxWorkers caps every computed or requested worker count.
	MaxWorkers = 64

	// workersPerCore oversubscribes CPUs since hashing waits on disk.
	workersPerCore = 2

	// memoryFraction is the share of available RAM block buffers may use.
	memoryFraction = 0.05

	// bytesPerWorker is the block buffer plus fastwalk's per-goroutine state.
	bytesPerWorker = hasher.BlockSize + 64*1024
)

// Workers returns the worker count for the given resources: two per core,
// no more than fit in a small slice of available memory, between 1 and
// MaxWorkers.
func Workers(res SystemResources) int {
	n := max(res.CPUCores, 1) * workersPerCore

	if res.AvailableRAM > 0 {
		byMemory := int(float64(res.AvailableRAM) * memoryFraction / bytesPerWorker)
		n = min(n, byMemory)
	}

	return min(max(n, 1), MaxWorkers)
}

// WorkersWithOverride returns override, capped at MaxWorkers, when it is
// positive, and Workers(res) otherwise. An override of 1 selects the
// single-threaded walk.
func WorkersWithOverride(res SystemResources, override int) int {
	if override > 0 {
		return min(override, MaxWorkers)
	}
	return Workers(res)
}
