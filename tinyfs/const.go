package tinyfs

// BlockSize (B in the format) is the fixed size, in bytes, of every block
// on a TinyFS volume.
const BlockSize = 256

// Magic is the byte written at offset 1 of every non-free block produced
// by this package. Mount rejects a volume whose superblock lacks it.
const Magic = 0x44

// MaxFilenameLen is the longest filename TinyFS accepts, not counting the
// trailing NUL the on-disk filename field reserves.
const MaxFilenameLen = 8

// filenameFieldLen is the on-disk width of the filename field (8 chars
// plus a terminating NUL).
const filenameFieldLen = MaxFilenameLen + 1

// DefaultDiskName is the conventional filename for a TinyFS disk image.
const DefaultDiskName = "tinyFSDisk"

// DefaultDiskSize is the conventional size, in bytes, of a freshly made
// TinyFS disk image: 40 blocks of 256 bytes.
const DefaultDiskSize = 10240

// blockKind is the on-disk type tag stored at byte 0 of every block.
type blockKind byte

const (
	kindSuperblock  blockKind = 1
	kindInode       blockKind = 2
	kindFileContext blockKind = 3
	kindFree        blockKind = 4
)

// mapMark is the single-character classification of a block used in the
// superblock's disk map (dMap). It is distinct from blockKind: mapMark
// classifies current *use*, blockKind is the block's own encoded type tag.
type mapMark byte

const (
	markSuperblock  mapMark = 'S'
	markInode       mapMark = 'I'
	markFileContext mapMark = 'C'
	markFree        mapMark = 'F'
)

func (m mapMark) blockKind() blockKind {
	switch m {
	case markSuperblock:
		return kindSuperblock
	case markInode:
		return kindInode
	case markFileContext:
		return kindFileContext
	default:
		return kindFree
	}
}

// contextPayloadLen is the number of file-data bytes ("B-2" in the spec)
// a single FileContext block carries.
const contextPayloadLen = BlockSize - 2

// rdOnlySentinel is the nonzero sentinel convention for "writable"; 0
// means read-only.
const rdOnlySentinel = 0xFF
