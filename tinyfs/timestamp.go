package tinyfs

import (
	"time"

	"github.com/tinylabs/tinyfs/util/timestamp"
)

// now returns the current time in UTC, honoring SOURCE_DATE_EPOCH if set,
// so that test fixtures and reproducible builds can pin wall-clock reads.
func now() time.Time {
	return timestamp.GetTime()
}
