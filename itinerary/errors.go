package itinerary

import (
	"errors"
	"fmt"
)

// ErrStructuralInput matches every StructuralInputError via errors.Is.
var ErrStructuralInput = errors.New("itinerary input is not an object")

// StructuralInputError is the only failure Normalize reports: the candidate
// itself cannot be treated as an object. Missing or malformed fields below
// the top level are defaulted and never surface as errors.
type StructuralInputError struct {
	Kind string
}

func (e StructuralInputError) Error() string {
	return fmt.Sprintf("%s: got %s", ErrStructuralInput.Error(), e.Kind)
}

func (e StructuralInputError) Is(target error) bool {
	return target == ErrStructuralInput
}

// IsStructuralInputError checks if an error is a StructuralInputError (including wrapped errors)
func IsStructuralInputError(err error) bool {
	var se StructuralInputError
	return errors.As(err, &se)
}

// DefaultingEvent records a field that was replaced by its default. It is
// informational only.
type DefaultingEvent struct {
	Path   string
	Reason string
}

const (
	reasonMissing   = "missing"
	reasonWrongType = "wrong type"
	reasonInvalid   = "invalid value"
)
