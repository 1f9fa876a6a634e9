package tinyfs

import (
	"fmt"

	"github.com/google/uuid"
)

// dMapCapacity is how many dMap bytes fit after the superblock's
// (kind, magic, numBlocks) header: B-3.
const dMapCapacity = BlockSize - 3

// uuidLen is the width of the volume identifier stashed in the unused
// tail of the disk map. Per spec §3, only dMap[0:numBlocks] is
// meaningful, so bytes beyond NumBlocks are free for this package's own
// use as long as they never overlap a meaningful dMap entry.
const uuidLen = 16

// maxBlocksForUUID is the largest NumBlocks for which there is still
// room to stash a UUID after the meaningful dMap entries.
const maxBlocksForUUID = dMapCapacity - uuidLen

// superblock is the in-memory form of block 0.
type superblock struct {
	numBlocks int
	dMap      []mapMark // length numBlocks
	volumeID  uuid.UUID
}

func newSuperblock(numBlocks int) *superblock {
	if numBlocks > dMapCapacity {
		numBlocks = dMapCapacity
	}
	sb := &superblock{
		numBlocks: numBlocks,
		dMap:      make([]mapMark, numBlocks),
		volumeID:  uuid.New(),
	}
	sb.dMap[0] = markSuperblock
	for i := 1; i < numBlocks; i++ {
		sb.dMap[i] = markFree
	}
	return sb
}

func (sb *superblock) encode() []byte {
	buf := newBlock()
	putHeader(buf, kindSuperblock)
	buf[2] = byte(sb.numBlocks)
	for i, m := range sb.dMap {
		buf[3+i] = byte(m)
	}
	if sb.numBlocks <= maxBlocksForUUID {
		idBytes, _ := sb.volumeID.MarshalBinary()
		copy(buf[BlockSize-uuidLen:], idBytes)
	}
	return buf
}

// decodeSuperblock decodes block 0 without verifying magic; engine
// operations trust the disk map, per spec §4.2/§9.
func decodeSuperblock(buf []byte) (*superblock, error) {
	if len(buf) != BlockSize {
		return nil, fmt.Errorf("tinyfs: short superblock buffer (%d bytes)", len(buf))
	}
	numBlocks := int(buf[2])
	if numBlocks > dMapCapacity {
		numBlocks = dMapCapacity
	}
	sb := &superblock{
		numBlocks: numBlocks,
		dMap:      make([]mapMark, numBlocks),
	}
	for i := 0; i < numBlocks; i++ {
		sb.dMap[i] = mapMark(buf[3+i])
	}
	if numBlocks <= maxBlocksForUUID {
		_ = sb.volumeID.UnmarshalBinary(buf[BlockSize-uuidLen:])
	}
	return sb, nil
}

// decodeSuperblockValidated decodes block 0 and additionally verifies the
// magic byte; only Mount does this (spec §4.4, §9).
func decodeSuperblockValidated(buf []byte, path string) (*superblock, error) {
	if len(buf) < 2 || !headerMagicOK(buf) {
		return nil, &InvalidMagicError{Path: path}
	}
	return decodeSuperblock(buf)
}

// findRun returns the lowest block index i such that dMap[i:i+runLen] are
// all markFree, via a first-fit linear scan (spec §4.3). runLen is
// L+1: one inode block followed by L context blocks.
func (sb *superblock) findRun(runLen int) (int, bool) {
	if runLen <= 0 || runLen > sb.numBlocks {
		return 0, false
	}
	start := -1
	count := 0
	for i := 0; i < sb.numBlocks; i++ {
		if sb.dMap[i] == markFree {
			if start < 0 {
				start = i
			}
			count++
			if count == runLen {
				return start, true
			}
		} else {
			start = -1
			count = 0
		}
	}
	return 0, false
}

// markRun sets dMap[at] = head and dMap[at+1 : at+runLen] = tail.
func (sb *superblock) markRun(at, runLen int, head, tail mapMark) {
	sb.dMap[at] = head
	for i := at + 1; i < at+runLen; i++ {
		sb.dMap[i] = tail
	}
}

// markFreeRun resets dMap[at : at+runLen] to markFree.
func (sb *superblock) markFreeRun(at, runLen int) {
	for i := at; i < at+runLen; i++ {
		sb.dMap[i] = markFree
	}
}
