// Package tinyfs implements a single-volume, block-structured file
// system over an emulated disk: a regular host file treated as a
// sequence of fixed-size blocks.
//
// It provides primitive file operations (create, read/write whole
// files, byte-level read/write with a per-file position, delete,
// rename, seek, list, read-only toggle) and two storage-maintenance
// operations (fragment display and defragmentation). See SPEC_FULL.md
// at the repository root for the full specification this package
// implements.
package tinyfs
