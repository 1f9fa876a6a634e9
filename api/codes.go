// Package api exposes the legacy tfs_* numeric-return-code surface
// (spec §6) over the tinyfs package's Go-native Volume API: a
// process-wide mounted-volume singleton, exactly one at a time, the
// way the original source's global mount state worked (spec §4.4,
// §5). Library callers that don't need ABI-compatible return codes
// should use the tinyfs package directly.
package api

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tinylabs/tinyfs/tinyfs"
)

var log = logrus.WithField("component", "api")

var (
	mu      sync.Mutex
	mounted *tinyfs.Volume
)

// TfsMkfs wraps tinyfs.Mkfs, returning 0 on success or a negative error
// code on failure.
func TfsMkfs(path string, nBytes int64) int {
	if err := tinyfs.Mkfs(path, nBytes); err != nil {
		log.WithError(err).WithField("path", path).Warn("mkfs failed")
		return tinyfs.CodeForError(err)
	}
	return 0
}

// TfsMount mounts path as the process's current volume, unmounting
// whatever was mounted before (spec §4.4: "if a volume is already
// mounted, unmount it").
func TfsMount(path string) int {
	mu.Lock()
	defer mu.Unlock()
	if mounted != nil {
		_ = mounted.Unmount()
		mounted = nil
	}
	v, err := tinyfs.Mount(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("mount failed")
		return tinyfs.CodeForError(err)
	}
	mounted = v
	return 0
}

// TfsUnmount releases the process's current volume.
func TfsUnmount() int {
	mu.Lock()
	defer mu.Unlock()
	if mounted == nil {
		return tinyfs.CodeNoDiskMountedErr
	}
	err := mounted.Unmount()
	mounted = nil
	if err != nil {
		return tinyfs.CodeForError(err)
	}
	return 0
}

func current() (*tinyfs.Volume, int) {
	mu.Lock()
	defer mu.Unlock()
	if mounted == nil {
		return nil, tinyfs.CodeNoDiskMountedErr
	}
	return mounted, 0
}

// TfsOpenFile returns a nonnegative file handle on success, or a
// negative error code.
func TfsOpenFile(name string) int {
	v, code := current()
	if v == nil {
		return code
	}
	fd, err := v.OpenFile(name)
	if err != nil {
		return tinyfs.CodeForError(err)
	}
	return fd
}

// TfsCloseFile returns 0 on success or a negative error code.
func TfsCloseFile(fd int) int {
	v, code := current()
	if v == nil {
		return code
	}
	return codeOf(v.CloseFile(fd))
}

// TfsWriteFile returns 0 on success or a negative error code.
func TfsWriteFile(fd int, buffer []byte) int {
	v, code := current()
	if v == nil {
		return code
	}
	return codeOf(v.WriteFile(fd, buffer))
}

// TfsDeleteFile returns 0 on success or a negative error code.
func TfsDeleteFile(fd int) int {
	v, code := current()
	if v == nil {
		return code
	}
	return codeOf(v.DeleteFile(fd))
}

// TfsReadByte writes the read byte into out and returns 0 on success, or
// a negative error code (out is left untouched on failure).
func TfsReadByte(fd int, out *byte) int {
	v, code := current()
	if v == nil {
		return code
	}
	b, err := v.ReadByte(fd)
	if err != nil {
		return tinyfs.CodeForError(err)
	}
	*out = b
	return 0
}

// TfsWriteByte returns 0 on success or a negative error code.
func TfsWriteByte(fd int, b byte) int {
	v, code := current()
	if v == nil {
		return code
	}
	return codeOf(v.WriteByte(fd, b))
}

// TfsSeek returns 0 on success or a negative error code.
func TfsSeek(fd int, offset int) int {
	v, code := current()
	if v == nil {
		return code
	}
	return codeOf(v.Seek(fd, offset))
}

// TfsRename returns 0 on success or a negative error code.
func TfsRename(fd int, newName string) int {
	v, code := current()
	if v == nil {
		return code
	}
	return codeOf(v.Rename(fd, newName))
}

// TfsReaddir returns the OFT's filenames, or nil and a negative error
// code if no volume is mounted.
func TfsReaddir() ([]string, int) {
	v, code := current()
	if v == nil {
		return nil, code
	}
	names, err := v.Readdir()
	if err != nil {
		return nil, tinyfs.CodeForError(err)
	}
	return names, 0
}

// TfsReadFileInfo returns the file's timestamps, or a negative error
// code.
func TfsReadFileInfo(fd int) (tinyfs.FileInfo, int) {
	v, code := current()
	if v == nil {
		return tinyfs.FileInfo{}, code
	}
	info, err := v.ReadFileInfo(fd)
	if err != nil {
		return tinyfs.FileInfo{}, tinyfs.CodeForError(err)
	}
	return info, 0
}

// TfsMakeRO returns 0 on success or a negative error code.
func TfsMakeRO(name string) int {
	v, code := current()
	if v == nil {
		return code
	}
	return codeOf(v.MakeRO(name))
}

// TfsMakeRW returns 0 on success or a negative error code.
func TfsMakeRW(name string) int {
	v, code := current()
	if v == nil {
		return code
	}
	return codeOf(v.MakeRW(name))
}

// TfsDisplayFragments returns the disk map dump, or an empty string and
// a negative error code.
func TfsDisplayFragments() (string, int) {
	v, code := current()
	if v == nil {
		return "", code
	}
	s, err := v.DisplayFragments()
	if err != nil {
		return "", tinyfs.CodeForError(err)
	}
	return s, 0
}

// TfsDefrag returns 0 on success or a negative error code.
func TfsDefrag() int {
	v, code := current()
	if v == nil {
		return code
	}
	return codeOf(v.Defrag())
}

func codeOf(err error) int {
	if err == nil {
		return 0
	}
	return tinyfs.CodeForError(err)
}
