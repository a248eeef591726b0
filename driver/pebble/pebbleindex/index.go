package pebbleindex

import (
	"bytes"
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/dogmatiq/valuekit/index"
	"github.com/dogmatiq/valuekit/internal/errorx"
	"github.com/dogmatiq/valuekit/value"
)

// idx is an implementation of [index.BinaryIndex] that stores records in a
// contiguous region of a Pebble database's keyspace.
type idx struct {
	db     *pebble.DB
	name   string
	prefix []byte
}

func (x *idx) Name() string {
	return x.name
}

func (x *idx) Get(ctx context.Context, k *value.Value) (v []byte, err error) {
	defer errorx.Wrap(&err, "cannot get record from %q index", x.name)

	data, closer, err := x.db.Get(x.recordKey(k))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// The returned slice is only valid until the closer is closed.
	return bytes.Clone(data), ctx.Err()
}

func (x *idx) Has(ctx context.Context, k *value.Value) (ok bool, err error) {
	defer errorx.Wrap(&err, "cannot check for record in %q index", x.name)

	_, closer, err := x.db.Get(x.recordKey(k))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, ctx.Err()
	}
	if err != nil {
		return false, err
	}
	defer closer.Close()

	return true, ctx.Err()
}

func (x *idx) Set(ctx context.Context, k *value.Value, v []byte) (err error) {
	defer errorx.Wrap(&err, "cannot set record in %q index", x.name)

	c := x.recordKey(k)

	if len(v) == 0 {
		if err := x.db.Delete(c, pebble.Sync); err != nil {
			return err
		}
	} else if err := x.db.Set(c, v, pebble.Sync); err != nil {
		return err
	}

	return ctx.Err()
}

func (x *idx) Range(ctx context.Context, fn index.BinaryRangeFunc) error {
	return x.rangeBounds(ctx, x.prefix, fn)
}

func (x *idx) RangePrefix(ctx context.Context, p *value.Value, fn index.BinaryRangeFunc) error {
	return x.rangeBounds(ctx, p.AppendTo(bytes.Clone(x.prefix)), fn)
}

// rangeBounds invokes fn for each record whose database key begins with
// lower, in ascending key order.
func (x *idx) rangeBounds(
	ctx context.Context,
	lower []byte,
	fn index.BinaryRangeFunc,
) (err error) {
	defer errorx.Wrap(&err, "cannot range over %q index", x.name)

	it, err := x.db.NewIter(
		&pebble.IterOptions{
			LowerBound: lower,
			UpperBound: upperBound(lower),
		},
	)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, it.Close())
	}()

	for it.First(); it.Valid(); it.Next() {
		data, err := it.ValueAndErr()
		if err != nil {
			return err
		}

		k := value.NewString(string(it.Key()[len(x.prefix):]))

		ok, err := fn(ctx, k, bytes.Clone(data))
		if !ok || err != nil {
			return err
		}
	}

	return it.Error()
}

func (x *idx) Close() error {
	return nil
}

// recordKey returns the database key under which the record for k is stored.
func (x *idx) recordKey(k *value.Value) []byte {
	return k.AppendTo(bytes.Clone(x.prefix))
}

// upperBound returns the smallest key that is greater than every key
// beginning with p, or nil if no such key exists.
func upperBound(p []byte) []byte {
	u := bytes.Clone(p)

	for i := len(u) - 1; i >= 0; i-- {
		if u[i] < 0xFF {
			u[i]++
			return u[:i+1]
		}
	}

	return nil
}
