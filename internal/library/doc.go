// Package library keeps the catalog in step with the managed ROM directory.
//
// Manager imports individual files (copying them in when needed), reconciles
// the whole directory against the catalog in a single-flight scan, and can
// watch the directory so drops and deletions are picked up automatically.
package library
