package tinyfs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// oftEntry is one node of the open-file table's linked sequence (spec §9:
// "The OFT is a singly linked list keyed by handle" — kept as a linked
// list here rather than refactored into a slice, per the instruction to
// keep the source's shape where the spec itself names it).
type oftEntry struct {
	fd         int
	filename   string
	createTime time.Time
	handle     *os.File // mints a unique fd the way the original's open() on a scratch host file did
	next       *oftEntry
}

// openFileTable is the process-wide (here: per-Volume) handle→filename
// binding described in spec §4.5.
type openFileTable struct {
	head      *oftEntry
	scratchDir string
}

func newOpenFileTable(scratchDir string) *openFileTable {
	return &openFileTable{scratchDir: scratchDir}
}

func (t *openFileTable) findByName(name string) *oftEntry {
	for e := t.head; e != nil; e = e.next {
		if e.filename == name {
			return e
		}
	}
	return nil
}

func (t *openFileTable) findByFD(fd int) *oftEntry {
	for e := t.head; e != nil; e = e.next {
		if e.fd == fd {
			return e
		}
	}
	return nil
}

// open implements spec §4.5 openFile steps 3-4: return an existing
// entry's fd if filename already bound, else mint a fresh host-file-backed
// handle and append it.
func (t *openFileTable) open(name string) (int, error) {
	if e := t.findByName(name); e != nil {
		return e.fd, nil
	}
	if err := os.MkdirAll(t.scratchDir, 0o755); err != nil {
		return 0, &OpenFileError{Name: name, Err: err}
	}
	f, err := os.OpenFile(filepath.Join(t.scratchDir, name), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return 0, &OpenFileError{Name: name, Err: err}
	}
	e := &oftEntry{
		fd:         int(f.Fd()),
		filename:   name,
		createTime: now(),
		handle:     f,
	}
	if t.head == nil {
		t.head = e
	} else {
		tail := t.head
		for tail.next != nil {
			tail = tail.next
		}
		tail.next = e
	}
	return e.fd, nil
}

// close removes the entry matching fd, closing its scratch handle.
func (t *openFileTable) close(fd int) error {
	var prev *oftEntry
	for e := t.head; e != nil; e = e.next {
		if e.fd == fd {
			if prev == nil {
				t.head = e.next
			} else {
				prev.next = e.next
			}
			if e.handle != nil {
				_ = e.handle.Close()
				_ = os.Remove(e.handle.Name())
			}
			return nil
		}
		prev = e
	}
	return newHandleNotFoundError("close", fd)
}

// names returns every filename currently bound in the table, in
// insertion order (spec §4.6 readdir, §9 Open Question 2: OFT-only).
func (t *openFileTable) names() []string {
	var out []string
	for e := t.head; e != nil; e = e.next {
		out = append(out, e.filename)
	}
	return out
}

func (t *openFileTable) closeAll() {
	for e := t.head; e != nil; e = e.next {
		if e.handle != nil {
			_ = e.handle.Close()
			_ = os.Remove(e.handle.Name())
		}
	}
	t.head = nil
}

func (t *openFileTable) rename(fd int, newName string) error {
	e := t.findByFD(fd)
	if e == nil {
		return newHandleNotFoundError("rename", fd)
	}
	if t.findByName(newName) != nil {
		return fmt.Errorf("tinyfs: rename: %q already open", newName)
	}
	e.filename = newName
	return nil
}
