package data

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced id does not resolve to an entity.
	ErrNotFound = errors.New("not found")
	// ErrLocked means the requirement belongs to a locked baseline.
	ErrLocked = errors.New("requirement is locked")
	// ErrInvalid means the input was rejected before anything changed.
	ErrInvalid = errors.New("invalid input")
	// ErrPersist means the change was applied in memory but not written to disk.
	ErrPersist = errors.New("change applied but not saved")
)

// Applied reports whether a mutation returning err took effect.
func Applied(err error) bool {
	return err == nil || errors.Is(err, ErrPersist)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
