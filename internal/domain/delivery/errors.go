package delivery

import (
	"errors"
	"fmt"
)

var (
	ErrTrackingRecordNotFound  = errors.New("tracking record not found")
	ErrInvalidStatusTransition = errors.New("invalid delivery status transition")
	ErrDriverRequired          = errors.New("driver reference is required")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}
