package identity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a malformed identifier together with the values
// that would have been accepted.
type ValidationError struct {
	Field    string
	Value    string
	Accepted []string
}

func (e *ValidationError) Error() string {
	if len(e.Accepted) == 0 {
		return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid %s %q: expected one of %s", e.Field, e.Value, strings.Join(e.Accepted, ", "))
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
