package names

import "errors"

// Error kinds shared by the registry and the gateway. Callers match them with
// errors.Is; the HTTP layer maps each kind to one status code. Conflict and
// not-found errors are wrapped with the quoted name, e.g. "'John' already exists".
var (
	ErrValidation          = errors.New("invalid input")
	ErrConflict            = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrStoreOperation      = errors.New("store operation failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError carries the human-readable rule that rejected an input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(reason string) error { return &ValidationError{Reason: reason} }
