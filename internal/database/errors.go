package database

import "errors"

var (
	// ErrNotFound is returned when a referenced room, booking or entry
	// does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConcurrentModification is returned when a version-checked update
	// touched zero rows. The caller should re-read and retry.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrCorruptRecord is returned when a stored booking violates the
	// schema contract, e.g. an empty payment status. Legacy rows are
	// expected to be backfilled, not defaulted at read time.
	ErrCorruptRecord = errors.New("corrupt record")
)
