package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSerializationFailure = errors.New("serialization failure")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidState         = errors.New("invalid state")
	ErrForbidden            = errors.New("forbidden")
)

// CapacityError is returned when a booking asks for more seats than the
// event has left. Remaining is reported back to the client.
type CapacityError struct {
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats available, only %d remaining", e.Remaining)
}
