package timeline

import (
	"errors"
)

var ErrMarshalingEntryFailed = errors.New("marshaling history entry failed")

// SequenceNumberUint is a type alias for uint, representing the position of an Entry in the global log.
type SequenceNumberUint = uint
