package approval

import "errors"

var (
	// ErrSideEffect is returned when an approved record's external action
	// failed; the record stays pending.
	ErrSideEffect = errors.New("approval: side effect failed")

	// ErrInvalidAction is returned for an action other than approve or reject.
	ErrInvalidAction = errors.New("approval: invalid action")

	// ErrInvalidID is returned when an id has no kind or base name.
	ErrInvalidID = errors.New("approval: invalid id")
)
