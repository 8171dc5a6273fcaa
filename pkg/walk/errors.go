package walk

// Re-exported so callers of this package don't need to import pkg/cohort
// just to errors.Is against the taxonomy.
import "github.com/amedeedaboville/gix-of-theseus/pkg/cohort"

var (
	// ErrConfig covers invalid configuration: unreachable head, bad predicate.
	ErrConfig = cohort.ErrConfig
	// ErrObject covers missing or corrupt git objects.
	ErrObject = cohort.ErrObject
	// ErrDiff covers a diff application that would violate the blame state's length invariant.
	ErrDiff = cohort.ErrDiff
	// ErrCancelled is returned when a run is stopped by context cancellation.
	ErrCancelled = cohort.ErrCancelled
)
