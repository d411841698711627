// Package indexmanager loads a directory of archive index files (.idx and
// .index) concurrently and keeps a Resolver up to date, optionally
// refreshing it in the background as new index files appear.
package indexmanager

import "errors"

var (
	// ErrClosed is returned by Start when the manager has been closed or its
	// refresh task is already running.
	ErrClosed = errors.New("indexmanager: manager closed")

	// ErrNoBucket is returned when a loaded file's bucket number can't be
	// determined from its filename. There is no silent fallback to bucket 0.
	ErrNoBucket = errors.New("indexmanager: no bucket number in filename")
)
