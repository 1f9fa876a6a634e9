package tinyfs

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// DisplayFragments implements spec §4.7: a human-readable, block-by-block
// occupancy view of the disk map.
func (v *Volume) DisplayFragments() (string, error) {
	if !v.mounted() {
		return "", &NoVolumeMountedError{}
	}
	sb, err := v.readSuperblock()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, m := range sb.dMap {
		b.WriteByte(byte(m))
	}
	return b.String(), nil
}

// Defrag implements spec §4.7: stable left-compaction of all non-free
// blocks into a contiguous prefix, fixing up every moved inode's
// posInDsk (the REDESIGN FLAG spec §9 calls out — the original source
// leaves posInDsk stale after a move, which this implementation does
// not reproduce).
func (v *Volume) Defrag() error {
	if !v.mounted() {
		return &NoVolumeMountedError{}
	}
	sb, err := v.readSuperblock()
	if err != nil {
		return err
	}

	newDMap := make([]mapMark, sb.numBlocks)
	write := 0
	for read := 0; read < sb.numBlocks; read++ {
		if sb.dMap[read] == markFree {
			continue
		}
		if read != write {
			buf := newBlock()
			if err := v.dev.ReadBlock(read, buf); err != nil {
				return newDeviceError("read", err)
			}
			if headerKind(buf) == kindInode {
				ino := decodeInode(buf)
				ino.posInDsk = uint8(write)
				buf = ino.encode()
			}
			if err := v.dev.WriteBlock(write, buf); err != nil {
				return newDeviceError("write", err)
			}
		}
		newDMap[write] = sb.dMap[read]
		write++
	}

	free := encodeFreeBlock()
	for i := write; i < sb.numBlocks; i++ {
		if err := v.dev.WriteBlock(i, free); err != nil {
			return newDeviceError("write", err)
		}
		newDMap[i] = markFree
	}
	sb.dMap = newDMap

	if err := v.writeSuperblock(sb); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"path": v.path, "liveBlocks": write}).Info("defragmented volume")
	return nil
}
