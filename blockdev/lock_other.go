//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package blockdev

import "os"

// lockFile is a no-op on platforms without flock semantics.
func lockFile(f *os.File) error { return nil }

func unlockFile(f *os.File) {}
