package value

import (
	"errors"
	"fmt"
)

// ErrNilBuffer is returned by [New] and [NewRange] if the supplied backing
// buffer is nil.
var ErrNilBuffer = errors.New("backing buffer must not be nil")

// OutOfBoundsError is returned when a requested byte range does not fit
// within the storage that it addresses.
type OutOfBoundsError struct {
	// Offset is the position at which the range begins.
	Offset int

	// Length is the number of bytes in the range.
	Length int

	// Capacity is the size of the storage being addressed.
	Capacity int
}

func (e OutOfBoundsError) Error() string {
	return fmt.Sprintf(
		"byte range [%d, %d) does not fit within storage of %d bytes",
		e.Offset,
		e.Offset+e.Length,
		e.Capacity,
	)
}

// TruncatedError is returned by [Decode] if the stream ends before the
// number of payload bytes declared in the envelope header have been read.
type TruncatedError struct {
	// Expected is the payload length declared in the header.
	Expected int

	// Actual is the number of payload bytes that were available.
	Actual int
}

func (e TruncatedError) Error() string {
	return fmt.Sprintf(
		"value is truncated: header declares %d payload bytes, but only %d are available",
		e.Expected,
		e.Actual,
	)
}

// IsOutOfBounds returns true if err is caused by an [OutOfBoundsError].
func IsOutOfBounds(err error) bool {
	return errors.As(err, &OutOfBoundsError{})
}

// IsTruncated returns true if err is caused by a [TruncatedError].
func IsTruncated(err error) bool {
	return errors.As(err, &TruncatedError{})
}
