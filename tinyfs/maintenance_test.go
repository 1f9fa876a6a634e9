package tinyfs_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// R3: defragmenting a volume with no holes is idempotent.
func TestDefragIdempotentWhenNoHoles(t *testing.T) {
	v, _ := newTestVolume(t)
	fd, err := v.OpenFile("a")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile(fd, []byte("hello")))

	before, err := v.DisplayFragments()
	require.NoError(t, err)

	require.NoError(t, v.Defrag())

	after, err := v.DisplayFragments()
	require.NoError(t, err)
	require.Equal(t, before, after)
}

// S6: a hole left behind by deleting an earlier file is compacted away,
// moving later files left and fixing up their posInDsk.
func TestDefragCompactsHoleAndPreservesContent(t *testing.T) {
	v, _ := newTestVolume(t)

	fdA, err := v.OpenFile("a")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile(fdA, bytes.Repeat([]byte{0x01}, 300))) // 2 blocks

	fdB, err := v.OpenFile("b")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile(fdB, []byte("surviving-file-b")))

	require.NoError(t, v.DeleteFile(fdA))

	frag, err := v.DisplayFragments()
	require.NoError(t, err)
	require.Equal(t, "FFF", frag[1:4]) // hole exists where a's blocks were

	require.NoError(t, v.Defrag())

	fragAfter, err := v.DisplayFragments()
	require.NoError(t, err)
	for i, c := range fragAfter {
		if c == 'F' {
			for j := i; j < len(fragAfter); j++ {
				require.Equal(t, byte('F'), fragAfter[j], "free blocks must all trail after defrag")
			}
			break
		}
	}

	fdB2, err := v.OpenFile("b")
	require.NoError(t, err)
	require.Equal(t, fdB, fdB2)
	require.NoError(t, v.Seek(fdB2, 0))
	var got []byte
	for {
		b, err := v.ReadByte(fdB2)
		if err != nil {
			break
		}
		got = append(got, b)
	}
	require.Equal(t, []byte("surviving-file-b"), got)
}

// R4: a write that cannot find a large enough free run rolls back
// cleanly, leaving the previous content intact and readable.
func TestWriteRollsBackOnNoSpace(t *testing.T) {
	v, _ := newTestVolume(t)
	fd, err := v.OpenFile("small")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile(fd, []byte("fits")))

	huge := bytes.Repeat([]byte{0x02}, 100000)
	err = v.WriteFile(fd, huge)
	require.Error(t, err)

	require.NoError(t, v.Seek(fd, 0))
	var got []byte
	for {
		b, err := v.ReadByte(fd)
		if err != nil {
			break
		}
		got = append(got, b)
	}
	require.Equal(t, []byte("fits"), got)
}
