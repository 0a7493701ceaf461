package errors

import (
	"errors"
	"fmt"
)

var ErrForbidden = errors.New("operation is forbidden for user")
var ErrNotFound = errors.New("record not found")

// ValidationError is a user-fixable domain error: bad dates, overlap,
// outside operating hours, insufficient stock, invalid transition.
// It blocks the operation and surfaces its message to the client.
type ValidationError struct {
	Message   string
	Conflicts []Conflict
}

// Conflict describes an existing booking that blocks the requested window.
type Conflict struct {
	Reference string `json:"reference"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

func (e *ValidationError) Error() string {
	if len(e.Conflicts) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (conflicts with %s %s - %s)",
		e.Message, e.Conflicts[0].Reference, e.Conflicts[0].Start, e.Conflicts[0].End)
}

// NewValidation creates a ValidationError with a formatted message.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
