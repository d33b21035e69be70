package stage

import "errors"

// Sentinel errors shared by every Directory implementation. Callers use
// errors.Is; implementations wrap them with the offending location.
var (
	// ErrNotFound is returned when a record is absent, including when a
	// concurrent actor moved it first.
	ErrNotFound = errors.New("stage: record not found")

	// ErrDirectoryUnavailable is returned when a stage directory has not been
	// created yet. Listings treat it as empty.
	ErrDirectoryUnavailable = errors.New("stage: directory unavailable")

	// ErrTargetUnavailable is returned when a destination directory cannot
	// be created.
	ErrTargetUnavailable = errors.New("stage: target unavailable")

	// ErrCollisionAtTarget is returned when the destination already holds a
	// record with the same name.
	ErrCollisionAtTarget = errors.New("stage: record already exists at target")
)
