package tinyfs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinylabs/tinyfs/tinyfs"
)

func newTestVolume(t *testing.T) (*tinyfs.Volume, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, tinyfs.Mkfs(path, tinyfs.DefaultDiskSize))
	v, err := tinyfs.Mount(path)
	require.NoError(t, err)
	t.Cleanup(func() { v.Unmount() })
	return v, path
}

// S1: mkfs(10240); mount; displayFragments() == "S" + 39x"F".
func TestMkfsMountDisplayFragments(t *testing.T) {
	v, _ := newTestVolume(t)
	frag, err := v.DisplayFragments()
	require.NoError(t, err)
	require.Len(t, frag, 40)
	require.Equal(t, byte('S'), frag[0])
	for i := 1; i < 40; i++ {
		require.Equal(t, byte('F'), frag[i], "index %d", i)
	}
}

func TestMountRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.img")
	require.NoError(t, os.WriteFile(path, make([]byte, tinyfs.DefaultDiskSize), 0o644))

	_, err := tinyfs.Mount(path)
	require.Error(t, err)
	require.Equal(t, tinyfs.CodeInvalidMagicErr, tinyfs.CodeForError(err))
}

func TestMkfsRejectsUndersizedDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.img")
	err := tinyfs.Mkfs(path, 10)
	require.Error(t, err)
}

func TestUnmountThenOperationFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, tinyfs.Mkfs(path, tinyfs.DefaultDiskSize))
	v, err := tinyfs.Mount(path)
	require.NoError(t, err)
	require.NoError(t, v.Unmount())

	_, err = v.OpenFile("a")
	require.Error(t, err)
}
