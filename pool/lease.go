package pool

import (
	"errors"

	"github.com/dogmatiq/valuekit/value"
)

// ErrLeaseReleased indicates that a lease was released more times than it
// was retained.
var ErrLeaseReleased = errors.New("lease has already been fully released")

// A Lease grants temporary use of a buffer borrowed from a [Pool].
//
// A lease is not safe for concurrent use. Its usage count is the advisory
// counter of the leased value; callers that share a lease across goroutines
// must supply their own synchronization.
type Lease struct {
	pool *Pool
	buf  *[]byte
	v    *value.Value
}

// Value returns a value that views the leased buffer.
//
// The value must not be used after the lease has been fully released.
func (l *Lease) Value() *value.Value {
	return l.v
}

// Retain increments the lease's usage count.
//
// Each call to Retain must be balanced by a call to [Lease.Release].
func (l *Lease) Retain() {
	if l.buf == nil {
		panic("lease has already been fully released")
	}

	l.v.Retain()
}

// Release decrements the lease's usage count.
//
// When the count reaches zero the buffer is returned to the pool and the
// lease must not be used again. It returns [ErrLeaseReleased] if the lease
// has already been fully released.
func (l *Lease) Release() error {
	if l.buf == nil {
		return ErrLeaseReleased
	}

	if l.v.Release() > 0 {
		return nil
	}

	buf := l.buf
	l.buf = nil
	l.v = nil

	l.pool.recycle(buf)

	return nil
}
