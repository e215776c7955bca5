// errors.go
package betafeatures

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input parameters")
	ErrInvalidKey         = errors.New("invalid feature key")
	ErrNotFound           = errors.New("entry not found")
	ErrStorageUnavailable = errors.New("count store unavailable")
	ErrCacheUnavailable   = errors.New("cache backend unavailable")
	ErrNoUserStore        = errors.New("no user store configured")
)

// MissingFieldError reports a feature declaration that lacks one of its
// required fields. It aborts the entire assembly: no partial preference set
// is ever surfaced to the caller.
type MissingFieldError struct {
	Feature string
	Field   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("the field %s was missing from the beta feature %s", e.Field, e.Feature)
}
