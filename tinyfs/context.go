package tinyfs

// encodeContextBlocks splits data into ceil(len(data)/contextPayloadLen)
// FileContext blocks, zero-padding the last one (spec §3).
func encodeContextBlocks(data []byte) [][]byte {
	n := fcbCount(len(data))
	blocks := make([][]byte, n)
	for i := 0; i < n; i++ {
		b := newBlock()
		putHeader(b, kindFileContext)
		start := i * contextPayloadLen
		end := start + contextPayloadLen
		if end > len(data) {
			end = len(data)
		}
		copy(b[2:], data[start:end])
		blocks[i] = b
	}
	return blocks
}

// decodeContextRun concatenates the payloads of fcbLen consecutive
// FileContext blocks into one contiguous buffer.
func decodeContextRun(blocks [][]byte) []byte {
	out := make([]byte, 0, len(blocks)*contextPayloadLen)
	for _, b := range blocks {
		out = append(out, b[2:]...)
	}
	return out
}

// fcbCount returns ceil(size / contextPayloadLen), with a floor of 0 for
// an empty file (spec B4: size=0 still gets fcbLen=0, consuming only the
// inode block).
func fcbCount(size int) int {
	if size <= 0 {
		return 0
	}
	return (size + contextPayloadLen - 1) / contextPayloadLen
}
