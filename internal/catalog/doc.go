// Package catalog owns the ROM catalog: an ordered list of entries persisted
// to db.json after every mutation.
//
// Store assigns ids, checksums new files, resolves titles through a
// gamedb.Resolver, and keeps file names unique. Writes are atomic and guarded
// by a cross-process file lock; the in-memory list only changes after the
// write succeeds. Committed mutations are published to a Feed that observers
// poll.
package catalog
