// Package tinyfs implements TinyFS: a single-volume, block-structured
// file system over an emulated disk (a host file treated as a sequence
// of fixed-size blocks).
package tinyfs

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tinylabs/tinyfs/blockdev"
)

var log = logrus.WithField("component", "tinyfs")

// Volume is a mounted TinyFS disk: the device handle, bound to the
// open-file table that resolves handles to filenames (spec §4.4, §4.5).
//
// This is the explicit handle spec §9's design notes recommend in place
// of bare process-wide globals: Mount returns one, and every operation
// is a method on it. The api package layers the legacy "one mounted
// volume" singleton contract back on top, for callers that want the
// original tfs_* ABI.
type Volume struct {
	dev    *blockdev.Device
	oft    *openFileTable
	path   string
	closed bool
}

// mounted reports whether v is a non-nil, not-yet-unmounted volume.
func (v *Volume) mounted() bool { return v != nil && !v.closed }

// Mkfs creates a new TinyFS volume at path: nBytes zeroed, then a
// superblock with dMap[0]='S' and the rest 'F' (spec §4.4).
func Mkfs(path string, nBytes int64) error {
	if nBytes <= 0 || nBytes < BlockSize {
		return fmt.Errorf("tinyfs: mkfs: invalid size %d (must be >= %d)", nBytes, BlockSize)
	}
	dev, err := blockdev.Open(path, nBytes, BlockSize)
	if err != nil {
		return newDeviceError("open", err)
	}
	defer dev.Close()

	numBlocks := int(nBytes / BlockSize)
	if numBlocks > 255 {
		// u8 numBlocks field caps volumes at 255 blocks (spec §9 Open
		// Question 3); left as-is, format not revised.
		numBlocks = 255
	}

	free := encodeFreeBlock()
	for i := 0; i < numBlocks; i++ {
		if err := dev.WriteBlock(i, free); err != nil {
			return newDeviceError("write", err)
		}
	}
	sb := newSuperblock(numBlocks)
	if err := dev.WriteBlock(0, sb.encode()); err != nil {
		return newDeviceError("write", err)
	}
	log.WithFields(logrus.Fields{"path": path, "numBlocks": numBlocks, "volumeID": sb.volumeID}).Info("created TinyFS volume")
	return nil
}

// Mount opens path as a TinyFS volume, validating the superblock's magic
// byte (spec §4.4).
func Mount(path string) (*Volume, error) {
	dev, err := blockdev.Open(path, 0, BlockSize)
	if err != nil {
		return nil, newDeviceError("open", err)
	}
	buf := newBlock()
	if err := dev.ReadBlock(0, buf); err != nil {
		_ = dev.Close()
		return nil, newDeviceError("read", err)
	}
	if _, err := decodeSuperblockValidated(buf, path); err != nil {
		_ = dev.Close()
		return nil, err
	}
	v := &Volume{
		dev:  dev,
		oft:  newOpenFileTable(path + ".oft"),
		path: path,
	}
	log.WithField("path", path).Info("mounted TinyFS volume")
	return v, nil
}

// Unmount releases the volume's device handle and every open scratch
// handle in its open-file table. Subsequent operations on v fail.
func (v *Volume) Unmount() error {
	if v == nil || v.closed {
		return nil
	}
	v.oft.closeAll()
	err := v.dev.Close()
	v.closed = true
	log.WithField("path", v.path).Info("unmounted TinyFS volume")
	return err
}

func (v *Volume) readSuperblock() (*superblock, error) {
	buf := newBlock()
	if err := v.dev.ReadBlock(0, buf); err != nil {
		return nil, newDeviceError("read", err)
	}
	return decodeSuperblock(buf)
}

func (v *Volume) writeSuperblock(sb *superblock) error {
	if err := v.dev.WriteBlock(0, sb.encode()); err != nil {
		return newDeviceError("write", err)
	}
	return nil
}
