package generator

import "errors"

var (
	// ErrResource: a worker could not acquire its execution resource. The
	// whole run fails before any worker generates.
	ErrResource = errors.New("worker resource unavailable")

	// ErrPersist: the key sink rejected a found key.
	ErrPersist = errors.New("persist key")

	// ErrMatcher: the predicate engine failed while evaluating an address.
	// It is reported as a configuration problem discovered late.
	ErrMatcher = errors.New("match predicate failed")
)
