package pubsubmanager

import (
	"errors"
	"fmt"
)

var ErrNilClock = errors.New("nil clock supplied")
var ErrInvalidSinkTimeout = errors.New("sink timeout must be positive")
var ErrEmptyManagerID = errors.New("empty manager id supplied")

// HandlerPanicError is recorded as the error of a subscriber_error entry when a handler panics.
type HandlerPanicError struct {
	Value any
}

func (e HandlerPanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}
