package animals

import (
	"errors"
	"fmt"

	"zoo-keeper/internal/domain/diet"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFoundOrForbidden une "no existe" y "no es tuyo" para no revelar cuál fue.
	ErrNotFoundOrForbidden = errors.New("animal or enclosure not found")

	ErrDietMismatch       = errors.New("diet mismatch")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrEnclosureBusy      = errors.New("enclosure is being modified, retry")
)

type DietMismatchError struct {
	Expected diet.Diet // dieta del recinto
	Actual   diet.Diet // dieta de la especie del animal
}

func (e *DietMismatchError) Error() string {
	return fmt.Sprintf("diet mismatch: enclosure expects %s, animal is %s", e.Expected, e.Actual)
}

func (e *DietMismatchError) Unwrap() error { return ErrDietMismatch }

type CapacityExceededError struct {
	EnclosureID string
	Capacity    int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded: enclosure holds at most %d animals", e.Capacity)
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

// PersistenceError se devuelve tras compensar el ledger.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistenceFailure, e.Err} }
