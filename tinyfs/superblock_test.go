package tinyfs

import "testing"

func TestFindRunFirstFit(t *testing.T) {
	sb := &superblock{numBlocks: 10, dMap: make([]mapMark, 10)}
	sb.dMap[0] = markSuperblock
	for i := 1; i < 10; i++ {
		sb.dMap[i] = markFree
	}
	sb.markRun(3, 2, markInode, markFileContext) // occupy [3,4]

	start, ok := sb.findRun(2)
	if !ok || start != 1 {
		t.Fatalf("expected first-fit run at 1, got %d ok=%v", start, ok)
	}

	start, ok = sb.findRun(3)
	if !ok || start != 5 {
		t.Fatalf("expected run of 3 at 5 (skipping the occupied [3,4]), got %d ok=%v", start, ok)
	}
}

func TestFindRunNoSpace(t *testing.T) {
	sb := &superblock{numBlocks: 4, dMap: []mapMark{markSuperblock, markInode, markFileContext, markFree}}
	if _, ok := sb.findRun(2); ok {
		t.Fatal("expected no run of 2 to fit in a single free block")
	}
}

func TestMarkRunAndMarkFreeRun(t *testing.T) {
	sb := &superblock{numBlocks: 5, dMap: make([]mapMark, 5)}
	sb.markRun(1, 3, markInode, markFileContext)
	want := []mapMark{0, markInode, markFileContext, markFileContext, 0}
	for i, m := range want {
		if sb.dMap[i] != m {
			t.Fatalf("dMap[%d] = %v, want %v", i, sb.dMap[i], m)
		}
	}
	sb.markFreeRun(1, 3)
	for i := 1; i < 4; i++ {
		if sb.dMap[i] != markFree {
			t.Fatalf("dMap[%d] = %v, want markFree", i, sb.dMap[i])
		}
	}
}

func TestSuperblockEncodeDecodeRoundTrip(t *testing.T) {
	sb := newSuperblock(40)
	buf := sb.encode()

	got, err := decodeSuperblock(buf)
	if err != nil {
		t.Fatalf("decodeSuperblock: %v", err)
	}
	if got.numBlocks != sb.numBlocks {
		t.Fatalf("numBlocks = %d, want %d", got.numBlocks, sb.numBlocks)
	}
	for i := range sb.dMap {
		if got.dMap[i] != sb.dMap[i] {
			t.Fatalf("dMap[%d] = %v, want %v", i, got.dMap[i], sb.dMap[i])
		}
	}
	if got.volumeID != sb.volumeID {
		t.Fatalf("volumeID = %v, want %v", got.volumeID, sb.volumeID)
	}
}
