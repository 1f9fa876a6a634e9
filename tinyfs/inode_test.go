package tinyfs

import "testing"

func TestInodeEncodeDecodeRoundTrip(t *testing.T) {
	ts := now()
	in := &inode{
		filename:   "abc",
		fp:         3,
		fSize:      10,
		fcbLen:     1,
		posInDsk:   5,
		rdOnly:     rdOnlySentinel,
		createTime: ts,
		modifyTime: ts,
		accessTime: ts,
	}
	buf := in.encode()

	if headerKind(buf) != kindInode {
		t.Fatalf("headerKind = %v, want kindInode", headerKind(buf))
	}
	if !headerMagicOK(buf) {
		t.Fatal("expected header magic to be set")
	}

	got := decodeInode(buf)
	if got.filename != in.filename {
		t.Fatalf("filename = %q, want %q", got.filename, in.filename)
	}
	if got.fp != in.fp || got.fSize != in.fSize || got.fcbLen != in.fcbLen || got.posInDsk != in.posInDsk {
		t.Fatalf("fields mismatch: got %+v, want %+v", got, in)
	}
	if got.rdOnly != in.rdOnly {
		t.Fatalf("rdOnly = %d, want %d", got.rdOnly, in.rdOnly)
	}
	if !got.writable() {
		t.Fatal("expected round-tripped inode to still be writable")
	}
	if got.createTime.Unix() != ts.Unix() {
		t.Fatalf("createTime = %v, want %v", got.createTime, ts)
	}
}

func TestInodeFilenameFieldTruncatesAtNUL(t *testing.T) {
	fn := encodeFilename("abc")
	for i := 3; i < len(fn); i++ {
		if fn[i] != 0 {
			t.Fatalf("expected trailing zero at %d, got %d", i, fn[i])
		}
	}
	if got := decodeFilename(fn[:]); got != "abc" {
		t.Fatalf("decodeFilename = %q, want %q", got, "abc")
	}
}

func TestInodeReadOnlySentinel(t *testing.T) {
	in := &inode{rdOnly: 0}
	if in.writable() {
		t.Fatal("rdOnly=0 should mean not writable")
	}
	in.rdOnly = rdOnlySentinel
	if !in.writable() {
		t.Fatal("rdOnlySentinel should mean writable")
	}
}
