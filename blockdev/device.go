// Package blockdev provides a fixed-size-block read/write abstraction over
// a regular host file, emulating a raw block device.
//
// It knows nothing about what the blocks contain; callers pick the block
// size and are responsible for interpreting the bytes they read and write.
package blockdev

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "blockdev")

// Device is a handle to a host file being used as an emulated disk.
type Device struct {
	f         *os.File
	path      string
	blockSize int
	closed    bool
}

// Open opens an existing disk (nBytes == 0) or creates a new, zeroed disk
// of exactly nBytes (nBytes > 0 and nBytes >= blockSize). Any other
// combination of arguments is rejected.
func Open(path string, nBytes int64, blockSize int) (*Device, error) {
	if blockSize <= 0 {
		return nil, newInvalidArgs("blockSize must be positive")
	}
	switch {
	case nBytes == 0:
		return openExisting(path, blockSize)
	case nBytes > 0 && nBytes >= int64(blockSize):
		return createFresh(path, nBytes, blockSize)
	default:
		return nil, newInvalidArgs(fmt.Sprintf("nBytes %d is neither 0 nor >= blockSize %d", nBytes, blockSize))
	}
}

func openExisting(path string, blockSize int) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, NewOpenError(path, err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, NewOpenError(path, err)
	}
	logHostTimes(path)
	return &Device{f: f, path: path, blockSize: blockSize}, nil
}

func createFresh(path string, nBytes int64, blockSize int) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, NewOpenError(path, err)
	}
	if err := f.Truncate(nBytes); err != nil {
		_ = f.Close()
		return nil, NewOpenError(path, err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, NewOpenError(path, err)
	}
	log.WithFields(logrus.Fields{"path": path, "size": nBytes}).Debug("created emulated disk")
	return &Device{f: f, path: path, blockSize: blockSize}, nil
}

// Close releases the host file handle. Further operations on Device fail.
func (d *Device) Close() error {
	if d == nil || d.closed {
		return &ErrClosed{}
	}
	d.closed = true
	unlockFile(d.f)
	return d.f.Close()
}

// ReadBlock reads exactly blockSize bytes at block index bNum into buf.
func (d *Device) ReadBlock(bNum int, buf []byte) error {
	if d == nil || d.closed {
		return &ErrClosed{}
	}
	if bNum < 0 {
		return newInvalidArgs(fmt.Sprintf("negative block number %d", bNum))
	}
	if len(buf) != d.blockSize {
		return newInvalidArgs(fmt.Sprintf("buffer length %d != block size %d", len(buf), d.blockSize))
	}
	n, err := d.f.ReadAt(buf, int64(bNum)*int64(d.blockSize))
	if err != nil || n != d.blockSize {
		return newReadError(bNum, err)
	}
	return nil
}

// WriteBlock writes exactly blockSize bytes from buf at block index bNum.
func (d *Device) WriteBlock(bNum int, buf []byte) error {
	if d == nil || d.closed {
		return &ErrClosed{}
	}
	if bNum < 0 {
		return newInvalidArgs(fmt.Sprintf("negative block number %d", bNum))
	}
	if len(buf) != d.blockSize {
		return newInvalidArgs(fmt.Sprintf("buffer length %d != block size %d", len(buf), d.blockSize))
	}
	n, err := d.f.WriteAt(buf, int64(bNum)*int64(d.blockSize))
	if err != nil || n != d.blockSize {
		return newWriteError(bNum, err)
	}
	return nil
}

// Path returns the host file path backing this device.
func (d *Device) Path() string { return d.path }
