package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when an id does not resolve.
var ErrNotFound = errors.New("not found")

// ValidationError carries a message that is surfaced verbatim to the
// caller; the underlying local state is never mutated on validation
// failure.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// TransitionError marks a rejected lifecycle transition.
type TransitionError struct {
	Type DocType
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Type, e.From, e.To)
}

func invalidTransitionError(t DocType, from, to Status) error {
	return &TransitionError{Type: t, From: from, To: to}
}

func invalidStatusError(t DocType, raw string) error {
	return validationError("invalid %s status: %q", t, raw)
}
