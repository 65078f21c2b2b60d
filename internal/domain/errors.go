package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marca errores de validacion detectados antes de cualquier
// llamada de red.
var ErrInvalidInput = errors.New("invalid input")

func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
