package tinyfs

import (
	"encoding/binary"
	"time"
)

// Inode offsets within a block, per spec §6.
const (
	inodeFilenameOff = 2
	inodeFPOff       = inodeFilenameOff + filenameFieldLen // 11
	inodeFSizeOff    = inodeFPOff + 2                      // 13
	inodeFcbLenOff   = inodeFSizeOff + 2                   // 15
	inodePosOff      = inodeFcbLenOff + 1                  // 16
	inodeRdOnlyOff   = inodePosOff + 1                     // 17
	inodeCreateOff   = inodeRdOnlyOff + 1                  // 18
	inodeModifyOff   = inodeCreateOff + 8                  // 26
	inodeAccessOff   = inodeModifyOff + 8                  // 34
)

// inode is the in-memory form of an Inode block.
type inode struct {
	filename   string
	fp         uint16
	fSize      uint16
	fcbLen     uint8
	posInDsk   uint8
	rdOnly     uint8 // 0 = read-only, nonzero = writable
	createTime time.Time
	modifyTime time.Time
	accessTime time.Time
}

func (n *inode) writable() bool { return n.rdOnly != 0 }

func encodeFilename(name string) [filenameFieldLen]byte {
	var out [filenameFieldLen]byte
	copy(out[:], name)
	return out
}

func decodeFilename(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

func (n *inode) encode() []byte {
	buf := newBlock()
	putHeader(buf, kindInode)
	fn := encodeFilename(n.filename)
	copy(buf[inodeFilenameOff:], fn[:])
	binary.LittleEndian.PutUint16(buf[inodeFPOff:], n.fp)
	binary.LittleEndian.PutUint16(buf[inodeFSizeOff:], n.fSize)
	buf[inodeFcbLenOff] = n.fcbLen
	buf[inodePosOff] = n.posInDsk
	buf[inodeRdOnlyOff] = n.rdOnly
	binary.LittleEndian.PutUint64(buf[inodeCreateOff:], uint64(n.createTime.Unix()))
	binary.LittleEndian.PutUint64(buf[inodeModifyOff:], uint64(n.modifyTime.Unix()))
	binary.LittleEndian.PutUint64(buf[inodeAccessOff:], uint64(n.accessTime.Unix()))
	return buf
}

func decodeInode(buf []byte) *inode {
	return &inode{
		filename:   decodeFilename(buf[inodeFilenameOff : inodeFilenameOff+filenameFieldLen]),
		fp:         binary.LittleEndian.Uint16(buf[inodeFPOff:]),
		fSize:      binary.LittleEndian.Uint16(buf[inodeFSizeOff:]),
		fcbLen:     buf[inodeFcbLenOff],
		posInDsk:   buf[inodePosOff],
		rdOnly:     buf[inodeRdOnlyOff],
		createTime: time.Unix(int64(binary.LittleEndian.Uint64(buf[inodeCreateOff:])), 0).UTC(),
		modifyTime: time.Unix(int64(binary.LittleEndian.Uint64(buf[inodeModifyOff:])), 0).UTC(),
		accessTime: time.Unix(int64(binary.LittleEndian.Uint64(buf[inodeAccessOff:])), 0).UTC(),
	}
}
