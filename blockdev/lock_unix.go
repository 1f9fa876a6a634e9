//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package blockdev

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory, non-blocking exclusive lock on f so that two
// Device handles opened against the same path within this process cannot
// interleave writes.
func lockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

func unlockFile(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
