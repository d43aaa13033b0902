package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no intermediate file exists yet.
	ErrNotFound = errors.New("journey file not found")
	// ErrCorrupt reports an intermediate file that cannot be decoded.
	ErrCorrupt = errors.New("journey file is corrupt")
)

// StoreError describes a failed store operation on a path.
type StoreError struct {
	Op   string
	Path string
	Kind error // ErrNotFound, ErrCorrupt or nil
	Err  error
}

func (e *StoreError) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("store %s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Kind)
	default:
		return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
	}
}

func (e *StoreError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
