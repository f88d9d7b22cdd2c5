//go:build !darwin && !dragonfly && !freebsd && !linux && !netbsd && !openbsd

package logging

import "os"

// No flock(2) here; elsewhere the in-process mutex is all there is.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) {}
