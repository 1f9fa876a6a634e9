package tinyfs

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// FileInfo is the triple of timestamps readFileInfo returns (spec §4.6).
type FileInfo struct {
	CreateTime time.Time
	ModifyTime time.Time
	AccessTime time.Time
}

// resolve performs the common preamble every file-engine operation opens
// with (spec §4.6): require a mounted volume, resolve fd in the OFT, and
// read the superblock.
func (v *Volume) resolve(fd int, op string) (string, *superblock, error) {
	if !v.mounted() {
		return "", nil, &NoVolumeMountedError{}
	}
	e := v.oft.findByFD(fd)
	if e == nil {
		return "", nil, newHandleNotFoundError(op, fd)
	}
	sb, err := v.readSuperblock()
	if err != nil {
		return "", nil, err
	}
	return e.filename, sb, nil
}

// findInode scans the disk map for an 'I' block whose filename matches
// name, returning its index and decoded inode. A nil inode with a nil
// error means no on-disk inode exists for name yet (spec invariant 4:
// an OFT entry does not imply an on-disk inode).
func (v *Volume) findInode(sb *superblock, name string) (int, *inode, error) {
	for i, m := range sb.dMap {
		if m != markInode {
			continue
		}
		buf := newBlock()
		if err := v.dev.ReadBlock(i, buf); err != nil {
			return 0, nil, newDeviceError("read", err)
		}
		ino := decodeInode(buf)
		if ino.filename == name {
			return i, ino, nil
		}
	}
	return -1, nil, nil
}

func (v *Volume) readContextRun(idx int, ino *inode) ([]byte, error) {
	blocks := make([][]byte, ino.fcbLen)
	for i := 0; i < int(ino.fcbLen); i++ {
		buf := newBlock()
		if err := v.dev.ReadBlock(idx+1+i, buf); err != nil {
			return nil, newDeviceError("read", err)
		}
		blocks[i] = buf
	}
	return decodeContextRun(blocks), nil
}

// OpenFile implements spec §4.5 openFile: reject overlong names, return
// an existing binding's handle as-is, or mint a fresh one.
func (v *Volume) OpenFile(name string) (int, error) {
	if !v.mounted() {
		return 0, &NoVolumeMountedError{}
	}
	if len(name) > MaxFilenameLen {
		return 0, newFilenameError(name)
	}
	return v.oft.open(name)
}

// CloseFile implements spec §4.5 closeFile.
func (v *Volume) CloseFile(fd int) error {
	if !v.mounted() {
		return &NoVolumeMountedError{}
	}
	return v.oft.close(fd)
}

// WriteFile implements the rewrite-with-rollback protocol of spec §4.6.
func (v *Volume) WriteFile(fd int, data []byte) error {
	name, sb, err := v.resolve(fd, "write")
	if err != nil {
		return err
	}

	newFcbLen := fcbCount(len(data))

	oldIdx, oldIno, err := v.findInode(sb, name)
	if err != nil {
		return err
	}
	if oldIno != nil && !oldIno.writable() {
		return newReadOnlyError(name)
	}

	var backup [][]byte
	var backupStart, backupRunLen int
	if oldIno != nil {
		backupRunLen = int(oldIno.fcbLen) + 1
		backupStart = oldIdx
		backup = make([][]byte, backupRunLen)
		for i := 0; i < backupRunLen; i++ {
			buf := newBlock()
			if err := v.dev.ReadBlock(backupStart+i, buf); err != nil {
				return newDeviceError("read", err)
			}
			backup[i] = buf
		}
		free := encodeFreeBlock()
		for i := 0; i < backupRunLen; i++ {
			if err := v.dev.WriteBlock(backupStart+i, free); err != nil {
				return newDeviceError("write", err)
			}
		}
		sb.markFreeRun(backupStart, backupRunLen)
		if err := v.writeSuperblock(sb); err != nil {
			return err
		}
	}

	newRunLen := newFcbLen + 1
	start, ok := sb.findRun(newRunLen)
	if !ok {
		if oldIno != nil {
			for i, blk := range backup {
				if err := v.dev.WriteBlock(backupStart+i, blk); err != nil {
					return newDeviceError("write", err)
				}
			}
			sb.markRun(backupStart, backupRunLen, markInode, markFileContext)
			if err := v.writeSuperblock(sb); err != nil {
				return err
			}
		}
		log.WithFields(logrus.Fields{"file": name, "needed": newRunLen}).Warn("writeFile: no space, rolled back")
		return newNoSpaceError(newRunLen)
	}

	ts := now()
	createTime, modifyTime, accessTime := ts, ts, ts
	switch {
	case oldIno != nil:
		createTime = oldIno.createTime
	default:
		// First-ever write: modify/access times equal the OFT entry's
		// creation time too, not the time of this write (spec §4.6).
		if e := v.oft.findByFD(fd); e != nil {
			createTime = e.createTime
		}
		modifyTime = createTime
		accessTime = createTime
	}

	newIno := &inode{
		filename:   name,
		fp:         0,
		fSize:      uint16(len(data)),
		fcbLen:     uint8(newFcbLen),
		posInDsk:   uint8(start),
		rdOnly:     rdOnlySentinel,
		createTime: createTime,
		modifyTime: modifyTime,
		accessTime: accessTime,
	}
	if err := v.dev.WriteBlock(start, newIno.encode()); err != nil {
		return newDeviceError("write", err)
	}

	for i, blk := range encodeContextBlocks(data) {
		if err := v.dev.WriteBlock(start+1+i, blk); err != nil {
			return newDeviceError("write", err)
		}
	}
	sb.markRun(start, newRunLen, markInode, markFileContext)

	return v.writeSuperblock(sb)
}

// DeleteFile implements spec §4.6 deleteFile.
func (v *Volume) DeleteFile(fd int) error {
	name, sb, err := v.resolve(fd, "delete")
	if err != nil {
		return err
	}
	idx, ino, err := v.findInode(sb, name)
	if err != nil {
		return err
	}
	if ino != nil {
		if !ino.writable() {
			return newReadOnlyError(name)
		}
		runLen := int(ino.fcbLen) + 1
		free := encodeFreeBlock()
		for i := 0; i < runLen; i++ {
			if err := v.dev.WriteBlock(idx+i, free); err != nil {
				return newDeviceError("write", err)
			}
		}
		sb.markFreeRun(idx, runLen)
		if err := v.writeSuperblock(sb); err != nil {
			return err
		}
	}
	return v.oft.close(fd)
}

// ReadByte implements spec §4.6 readByte.
func (v *Volume) ReadByte(fd int) (byte, error) {
	name, sb, err := v.resolve(fd, "readByte")
	if err != nil {
		return 0, err
	}
	idx, ino, err := v.findInode(sb, name)
	if err != nil {
		return 0, err
	}
	if ino == nil {
		return 0, newHandleNotFoundError("readByte", fd)
	}
	if ino.fp >= ino.fSize {
		return 0, &ReadByteError{Name: name, FP: ino.fp, Size: ino.fSize}
	}
	data, err := v.readContextRun(idx, ino)
	if err != nil {
		return 0, err
	}
	b := data[ino.fp]
	ino.fp++
	ino.accessTime = now()
	if err := v.dev.WriteBlock(idx, ino.encode()); err != nil {
		return 0, newDeviceError("write", err)
	}
	return b, nil
}

// WriteByte implements spec §4.6 writeByte. Unlike the original source
// (spec §9 design notes), this enforces the read-only flag, the same as
// writeFile and deleteFile already do.
func (v *Volume) WriteByte(fd int, b byte) error {
	name, sb, err := v.resolve(fd, "writeByte")
	if err != nil {
		return err
	}
	idx, ino, err := v.findInode(sb, name)
	if err != nil {
		return err
	}
	if ino == nil {
		return newHandleNotFoundError("writeByte", fd)
	}
	if !ino.writable() {
		return newReadOnlyError(name)
	}
	if ino.fp >= ino.fSize {
		return &WriteByteError{Name: name, FP: ino.fp, Size: ino.fSize}
	}
	data, err := v.readContextRun(idx, ino)
	if err != nil {
		return err
	}
	data[ino.fp] = b
	ino.fp++
	ts := now()
	ino.modifyTime = ts
	ino.accessTime = ts
	if err := v.dev.WriteBlock(idx, ino.encode()); err != nil {
		return newDeviceError("write", err)
	}
	for i, blk := range encodeContextBlocks(data) {
		if err := v.dev.WriteBlock(idx+1+i, blk); err != nil {
			return newDeviceError("write", err)
		}
	}
	return nil
}

// Seek implements spec §4.6 seek. A negative offset is outside the
// specified domain and is rejected, per spec §4.6's SHOULD.
func (v *Volume) Seek(fd int, offset int) error {
	name, sb, err := v.resolve(fd, "seek")
	if err != nil {
		return err
	}
	idx, ino, err := v.findInode(sb, name)
	if err != nil {
		return err
	}
	if ino == nil {
		return newHandleNotFoundError("seek", fd)
	}
	if offset < 0 || offset > int(ino.fSize) {
		return &InvalidSeekError{Name: name, Offset: uint16(offset), Size: ino.fSize}
	}
	ino.fp = uint16(offset)
	if err := v.dev.WriteBlock(idx, ino.encode()); err != nil {
		return newDeviceError("write", err)
	}
	return nil
}

// Rename implements spec §4.6 rename: updates the OFT binding and, if an
// on-disk inode already exists, the inode's filename too.
func (v *Volume) Rename(fd int, newName string) error {
	if !v.mounted() {
		return &NoVolumeMountedError{}
	}
	if len(newName) > MaxFilenameLen {
		return newFilenameError(newName)
	}
	e := v.oft.findByFD(fd)
	if e == nil {
		return newHandleNotFoundError("rename", fd)
	}
	oldName := e.filename
	sb, err := v.readSuperblock()
	if err != nil {
		return err
	}
	idx, ino, err := v.findInode(sb, oldName)
	if err != nil {
		return err
	}
	if err := v.oft.rename(fd, newName); err != nil {
		return err
	}
	if ino != nil {
		ino.filename = newName
		if err := v.dev.WriteBlock(idx, ino.encode()); err != nil {
			return newDeviceError("write", err)
		}
	}
	return nil
}

func (v *Volume) setReadOnly(name string, readOnly bool) error {
	if !v.mounted() {
		return &NoVolumeMountedError{}
	}
	sb, err := v.readSuperblock()
	if err != nil {
		return err
	}
	idx, ino, err := v.findInode(sb, name)
	if err != nil {
		return err
	}
	if ino == nil {
		return fmt.Errorf("tinyfs: %q has no on-disk inode", name)
	}
	if readOnly {
		ino.rdOnly = 0
	} else {
		ino.rdOnly = rdOnlySentinel
	}
	if err := v.dev.WriteBlock(idx, ino.encode()); err != nil {
		return newDeviceError("write", err)
	}
	return nil
}

// MakeRO implements spec §4.6 makeRO.
func (v *Volume) MakeRO(name string) error { return v.setReadOnly(name, true) }

// MakeRW implements spec §4.6 makeRW.
func (v *Volume) MakeRW(name string) error { return v.setReadOnly(name, false) }

// ReadFileInfo implements spec §4.6 readFileInfo.
func (v *Volume) ReadFileInfo(fd int) (FileInfo, error) {
	name, sb, err := v.resolve(fd, "readByte")
	if err != nil {
		return FileInfo{}, err
	}
	_, ino, err := v.findInode(sb, name)
	if err != nil {
		return FileInfo{}, err
	}
	if ino == nil {
		return FileInfo{}, fmt.Errorf("tinyfs: %q has no on-disk inode", name)
	}
	return FileInfo{CreateTime: ino.createTime, ModifyTime: ino.modifyTime, AccessTime: ino.accessTime}, nil
}

// Readdir implements spec §4.6 readdir: the OFT's filenames only (spec §9
// Open Question 2, resolved in favor of matching the original source).
func (v *Volume) Readdir() ([]string, error) {
	if !v.mounted() {
		return nil, &NoVolumeMountedError{}
	}
	return v.oft.names(), nil
}
