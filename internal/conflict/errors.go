package conflict

import "errors"

var (
	ErrUnknownStrategy = errors.New("unknown conflict strategy")
	ErrEmptyResolution = errors.New("manual resolution value is empty")
	ErrNoConflictStore = errors.New("conflict store is not configured")
)
