package operations

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrQubitMapping indicates a qubit mapping that does not cover a used qubit.
	ErrQubitMapping = errors.New("qubit mapping")
	// ErrInvalidPayload indicates a constructor argument with the wrong shape.
	ErrInvalidPayload = errors.New("invalid payload")
)

// QubitMappingError names the qubit missing from a remapping.
type QubitMappingError struct {
	Qubit int
}

func (e *QubitMappingError) Error() string {
	return fmt.Sprintf("qubit %d is not part of the qubit mapping", e.Qubit)
}

func (e *QubitMappingError) Unwrap() error {
	return ErrQubitMapping
}

func invalidPayload(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidPayload, format, args...)
}
