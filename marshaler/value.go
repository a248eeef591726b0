package marshaler

import (
	"github.com/dogmatiq/valuekit/value"
)

// NewValue returns a marshaler that marshals and unmarshals binary values
// using their canonical envelope encoding.
//
// Because the envelope carries the hash cache field, a value that is stored
// after its hash has been computed round-trips without recomputing it.
func NewValue() Marshaler[*value.Value] {
	return marshaler[*value.Value]{
		func(v *value.Value) ([]byte, error) {
			return v.MarshalBinary()
		},
		value.UnmarshalValue,
	}
}
