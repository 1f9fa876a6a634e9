package blockdev_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinylabs/tinyfs/blockdev"
)

const testBlockSize = 256

func TestOpenCreatesZeroedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")

	d, err := blockdev.Open(path, 10*testBlockSize, testBlockSize)
	require.NoError(t, err)
	defer d.Close()

	buf := make([]byte, testBlockSize)
	require.NoError(t, d.ReadBlock(3, buf))
	for _, b := range buf {
		require.Zero(t, b)
	}
}

func TestOpenRejectsBadArgs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")

	_, err := blockdev.Open(path, 10, testBlockSize) // 10 < blockSize and != 0
	require.Error(t, err)
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")

	d, err := blockdev.Open(path, 5*testBlockSize, testBlockSize)
	require.NoError(t, err)
	defer d.Close()

	want := make([]byte, testBlockSize)
	for i := range want {
		want[i] = byte(i)
	}
	require.NoError(t, d.WriteBlock(2, want))

	got := make([]byte, testBlockSize)
	require.NoError(t, d.ReadBlock(2, got))
	require.Equal(t, want, got)
}

func TestReadNegativeBlockFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")

	d, err := blockdev.Open(path, 5*testBlockSize, testBlockSize)
	require.NoError(t, err)
	defer d.Close()

	buf := make([]byte, testBlockSize)
	require.Error(t, d.ReadBlock(-1, buf))
}

func TestReopenExistingDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")

	d, err := blockdev.Open(path, 5*testBlockSize, testBlockSize)
	require.NoError(t, err)
	buf := make([]byte, testBlockSize)
	for i := range buf {
		buf[i] = 0xAB
	}
	require.NoError(t, d.WriteBlock(1, buf))
	require.NoError(t, d.Close())

	d2, err := blockdev.Open(path, 0, testBlockSize)
	require.NoError(t, err)
	defer d2.Close()

	got := make([]byte, testBlockSize)
	require.NoError(t, d2.ReadBlock(1, got))
	require.Equal(t, buf, got)
}
