package memoryindex

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/dogmatiq/valuekit/driver/memory/internal/clone"
	"github.com/dogmatiq/valuekit/index"
	"github.com/dogmatiq/valuekit/value"
)

// state is the in-memory state of an index.
//
// Keys are stored as strings so that Go's built-in string ordering, which is
// byte-wise and ranks shorter strings before their extensions, reproduces the
// order defined by [value.Compare].
type state struct {
	sync.RWMutex
	Records map[string][]byte
}

// idx is an implementation of [index.BinaryIndex] that manipulates an index's
// in-memory [state].
type idx struct {
	name      string
	state     *state
	beforeSet func(name string, k *value.Value, v []byte) error
	afterSet  func(name string, k *value.Value, v []byte) error
}

func (x *idx) Name() string {
	return x.name
}

func (x *idx) Get(ctx context.Context, k *value.Value) (v []byte, err error) {
	if x.state == nil {
		panic("index is closed")
	}

	x.state.RLock()
	defer x.state.RUnlock()

	return clone.Clone(x.state.Records[keyOf(k)]), ctx.Err()
}

func (x *idx) Has(ctx context.Context, k *value.Value) (ok bool, err error) {
	if x.state == nil {
		panic("index is closed")
	}

	x.state.RLock()
	defer x.state.RUnlock()

	_, ok = x.state.Records[keyOf(k)]
	return ok, ctx.Err()
}

func (x *idx) Set(ctx context.Context, k *value.Value, v []byte) error {
	if x.state == nil {
		panic("index is closed")
	}

	v = clone.Clone(v)

	x.state.Lock()
	defer x.state.Unlock()

	if x.beforeSet != nil {
		if err := x.beforeSet(x.name, k, v); err != nil {
			return err
		}
	}

	c := keyOf(k)

	if len(v) == 0 {
		delete(x.state.Records, c)
	} else {
		if x.state.Records == nil {
			x.state.Records = map[string][]byte{}
		}

		x.state.Records[c] = v
	}

	if x.afterSet != nil {
		if err := x.afterSet(x.name, k, v); err != nil {
			return err
		}
	}

	return ctx.Err()
}

func (x *idx) Range(ctx context.Context, fn index.BinaryRangeFunc) error {
	return x.rangeKeys(
		ctx,
		func(string) bool { return true },
		fn,
	)
}

func (x *idx) RangePrefix(ctx context.Context, p *value.Value, fn index.BinaryRangeFunc) error {
	prefix := keyOf(p)

	return x.rangeKeys(
		ctx,
		func(c string) bool { return strings.HasPrefix(c, prefix) },
		fn,
	)
}

func (x *idx) rangeKeys(
	ctx context.Context,
	pred func(string) bool,
	fn index.BinaryRangeFunc,
) error {
	if x.state == nil {
		panic("index is closed")
	}

	x.state.RLock()
	records := maps.Clone(x.state.Records)
	x.state.RUnlock()

	keys := make([]string, 0, len(records))
	for c := range records {
		if pred(c) {
			keys = append(keys, c)
		}
	}
	slices.Sort(keys)

	for _, c := range keys {
		k := value.NewString(c)
		ok, err := fn(ctx, k, clone.Clone(records[c]))
		if !ok || err != nil {
			return err
		}
	}

	return nil
}

func (x *idx) Close() error {
	if x.state == nil {
		return errors.New("index is already closed")
	}

	x.state = nil

	return nil
}

// keyOf converts k to the comparable representation used for map lookups.
func keyOf(k *value.Value) string {
	return string(k.Bytes())
}
