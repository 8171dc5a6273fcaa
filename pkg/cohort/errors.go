package cohort

import "errors"

// Sentinel errors forming the engine's error taxonomy. Components wrap these
// with fmt.Errorf("...: %w", Err...) so callers can errors.Is/errors.As.
var (
	// ErrConfig covers invalid repository paths, unreachable heads, and
	// invalid predicate configuration.
	ErrConfig = errors.New("cohort: config error")

	// ErrObject covers missing or corrupt git objects.
	ErrObject = errors.New("cohort: object error")

	// ErrDiff covers a diff application that would violate the blame
	// state's length invariant.
	ErrDiff = errors.New("cohort: diff error")

	// ErrIO covers serialization failures.
	ErrIO = errors.New("cohort: io error")

	// ErrCancelled is returned when a run is stopped by context
	// cancellation before completion.
	ErrCancelled = errors.New("cohort: cancelled")
)
