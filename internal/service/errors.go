package service

import (
	"errors"
	"fmt"
)

// Shared business errors. Handlers and the ws dispatcher map these to
// transport-level responses; the mapping layers contain no business rules.
var (
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
