package store

import "errors"

var (
	// ErrNotFound means the requested row does not exist locally.
	ErrNotFound = errors.New("record not found in local store")

	// ErrStorageUnavailable is returned by the no-op storages when the
	// local database could not be opened. Writes are rejected with it so
	// callers know nothing was persisted; reads come back empty instead.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrIllegalTransition means a queue status change was attempted from
	// a state that does not permit it (e.g. failed -> processing).
	ErrIllegalTransition = errors.New("illegal queue status transition")
)
