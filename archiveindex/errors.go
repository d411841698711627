package archiveindex

import "errors"

var (
	// ErrTruncated is returned when an index file ends before a fixed-size
	// section is fully present.
	ErrTruncated = errors.New("archiveindex: truncated index")

	// ErrNotSorted is returned when an index's entries are not in strictly
	// ascending key order, violating the uniqueness/sort invariant lookups
	// depend on.
	ErrNotSorted = errors.New("archiveindex: entries not sorted ascending")

	// ErrBucketRequired is returned when a caller does not supply an
	// explicit bucket number for an index that needs one. There is no
	// silent fallback to bucket 0.
	ErrBucketRequired = errors.New("archiveindex: explicit bucket required")

	// ErrBucketOutOfRange is returned for a bucket number outside [0, 16).
	ErrBucketOutOfRange = errors.New("archiveindex: bucket out of range")

	// ErrNotFound marks a missing entry.
	ErrNotFound = errors.New("archiveindex: not found")

	// ErrUnknownArchiveIndex is returned when a group index entry
	// references an archive-table slot past the end of the table.
	ErrUnknownArchiveIndex = errors.New("archiveindex: unknown archive index")
)
