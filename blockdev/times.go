package blockdev

import (
	"github.com/sirupsen/logrus"
	times "gopkg.in/djherbis/times.v1"
)

// logHostTimes logs the host file's modification and access times (and
// birth time, where the platform records one) at debug level when mounting an existing emulated disk, purely as a diagnostic;
// these host timestamps are never part of the TinyFS on-disk format.
func logHostTimes(path string) {
	t, err := times.Stat(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("could not stat host file times")
		return
	}
	fields := logrus.Fields{
		"path":     path,
		"modified": t.ModTime(),
		"accessed": t.AccessTime(),
	}
	if t.HasBirthTime() {
		fields["birth"] = t.BirthTime()
	}
	log.WithFields(fields).Debug("opened existing emulated disk")
}
