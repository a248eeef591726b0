// Package value provides an immutable binary value used as the fundamental
// key and record type throughout the valuekit persistence primitives.
//
// A [Value] is a fixed window over a backing byte buffer. It supports
// deterministic lexicographic ordering, structural equality, cached hashing,
// prefix testing, bulk extraction and a compact binary envelope suitable for
// persistence. The bytes within the window are never mutated after
// construction; callers that share a backing buffer must not modify it while
// any value views it.
package value

import (
	"bytes"
	"encoding/binary"
	"strconv"

	"github.com/dogmatiq/valuekit/internal/x/xatomic"
)

// A Value is an immutable view of a range of bytes within a backing buffer.
//
// Values are compared structurally; two values are equal if and only if the
// bytes they view are identical, regardless of the identity of their backing
// buffers. The zero ordering, equality and hashing semantics are
// compatibility-critical wherever values are persisted.
//
// Values must be used via pointer; they must not be copied after
// construction.
type Value struct {
	data []byte
	pos  int
	n    int

	hash xatomic.Cell[uint32]
	refs int
}

// New returns a value that views all of data.
//
// The value aliases data; it does not make a copy. It returns [ErrNilBuffer]
// if data is nil. A non-nil, zero-length buffer produces a valid empty value.
func New(data []byte) (*Value, error) {
	return NewRange(data, 0, len(data))
}

// NewRange returns a value that views the n bytes of data beginning at pos.
//
// The value aliases data; it does not make a copy. It returns [ErrNilBuffer]
// if data is nil, or an [OutOfBoundsError] if the requested range does not
// fit within data.
func NewRange(data []byte, pos, n int) (*Value, error) {
	if data == nil {
		return nil, ErrNilBuffer
	}

	if pos < 0 || n < 0 || pos+n > len(data) {
		return nil, OutOfBoundsError{
			Offset:   pos,
			Length:   n,
			Capacity: len(data),
		}
	}

	return &Value{
		data: data,
		pos:  pos,
		n:    n,
	}, nil
}

// NewString returns a value containing the bytes of s.
//
// The value owns its backing buffer outright.
func NewString(s string) *Value {
	data := []byte(s)
	return &Value{
		data: data,
		n:    len(data),
	}
}

// NewInt64 returns a value containing the 8-byte big-endian encoding of n.
func NewInt64(n int64) *Value {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(n))
	return &Value{
		data: data,
		n:    8,
	}
}

// view returns the viewed bytes without copying. The result aliases the
// backing buffer and must not be mutated.
func (v *Value) view() []byte {
	return v.data[v.pos : v.pos+v.n]
}

// Bytes returns the viewed bytes.
//
// If the view spans the entire backing buffer the buffer itself is returned
// without copying; otherwise a fresh copy is returned. The result must be
// treated as read-only in either case.
func (v *Value) Bytes() []byte {
	if v.pos == 0 && v.n == len(v.data) {
		return v.data
	}

	data := make([]byte, v.n)
	copy(data, v.view())

	return data
}

// Position returns the offset of the view within the backing buffer.
func (v *Value) Position() int {
	return v.pos
}

// Len returns the number of bytes in the view.
func (v *Value) Len() int {
	return v.n
}

// Reader returns an independent sequential reader over the viewed bytes.
//
// Consuming the reader does not mutate the value; each call returns a reader
// with its own cursor.
func (v *Value) Reader() *bytes.Reader {
	return bytes.NewReader(v.view())
}

// AppendTo appends the viewed bytes to buf and returns the extended buffer.
func (v *Value) AppendTo(buf []byte) []byte {
	return append(buf, v.view()...)
}

// Clone returns a value containing a copy of exactly the viewed bytes.
//
// The clone owns its backing buffer and is fully detached from the original
// buffer. Any cached hash is carried over, which is always valid because the
// cloned bytes are identical.
func (v *Value) Clone() *Value {
	data := make([]byte, v.n)
	copy(data, v.view())

	c := &Value{
		data: data,
		n:    v.n,
	}

	if sum, ok := v.hash.Load(); ok {
		c.hash.Store(sum)
	}

	return c
}

// Retain increments the value's advisory usage counter and returns the new
// count.
//
// The counter is bookkeeping for external ownership coordination, such as a
// buffer pool deciding when a backing buffer may be recycled. It has no
// effect on the value's own lifetime and is not synchronized; callers that
// share a value across goroutines must supply their own synchronization.
func (v *Value) Retain() int {
	v.refs++
	return v.refs
}

// Release decrements the value's advisory usage counter and returns the new
// count.
func (v *Value) Release() int {
	v.refs--
	return v.refs
}

func (v *Value) String() string {
	return strconv.QuoteToASCII(string(v.view()))
}
