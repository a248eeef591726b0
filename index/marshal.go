package index

import (
	"context"
	"reflect"

	"github.com/dogmatiq/valuekit/marshaler"
	"github.com/dogmatiq/valuekit/value"
)

// NewMarshalingStore returns a new [Store] that marshals/unmarshals records
// of type T to/from an underlying [BinaryStore].
func NewMarshalingStore[T any](
	s BinaryStore,
	m marshaler.Marshaler[T],
) Store[T] {
	return &mstore[T]{s, m}
}

// mstore is an implementation of [Store] that marshals/unmarshals records of
// type T to/from an underlying [BinaryStore].
type mstore[T any] struct {
	BinaryStore
	m marshaler.Marshaler[T]
}

func (s *mstore[T]) Open(ctx context.Context, name string) (Index[T], error) {
	idx, err := s.BinaryStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	return &mindex[T]{idx, s.m}, nil
}

// mindex is an implementation of [Index] that marshals/unmarshals records of
// type T to/from an underlying [BinaryIndex].
type mindex[T any] struct {
	BinaryIndex
	m marshaler.Marshaler[T]
}

func (idx *mindex[T]) Get(ctx context.Context, k *value.Value) (T, error) {
	data, err := idx.BinaryIndex.Get(ctx, k)
	if err != nil || len(data) == 0 {
		var zero T
		return zero, err
	}

	return idx.m.Unmarshal(data)
}

func (idx *mindex[T]) Set(ctx context.Context, k *value.Value, v T) error {
	var data []byte

	if !reflect.ValueOf(v).IsZero() {
		var err error
		data, err = idx.m.Marshal(v)
		if err != nil {
			return err
		}
	}

	return idx.BinaryIndex.Set(ctx, k, data)
}

func (idx *mindex[T]) Range(ctx context.Context, fn RangeFunc[T]) error {
	return idx.BinaryIndex.Range(ctx, idx.unmarshaling(fn))
}

func (idx *mindex[T]) RangePrefix(ctx context.Context, p *value.Value, fn RangeFunc[T]) error {
	return idx.BinaryIndex.RangePrefix(ctx, p, idx.unmarshaling(fn))
}

func (idx *mindex[T]) unmarshaling(fn RangeFunc[T]) BinaryRangeFunc {
	return func(ctx context.Context, k *value.Value, data []byte) (bool, error) {
		rec, err := idx.m.Unmarshal(data)
		if err != nil {
			return false, err
		}

		return fn(ctx, k, rec)
	}
}
