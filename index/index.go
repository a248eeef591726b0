// Package index provides an ordered collection of records keyed by immutable
// binary values.
//
// An index maintains its keys in the total order defined by [value.Compare];
// every driver must produce exactly that order when ranging, regardless of
// how the backend stores its keys.
package index

import (
	"context"

	"github.com/dogmatiq/valuekit/value"
)

// A RangeFunc is a function used to range over the records in an [Index].
//
// If err is non-nil, ranging stops and err is propagated up the stack.
// Otherwise, if ok is false, ranging stops without any error being
// propagated.
type RangeFunc[V any] func(ctx context.Context, k *value.Value, v V) (ok bool, err error)

// An Index is an isolated, ordered collection of records keyed by binary
// values.
type Index[V any] interface {
	// Name returns the name of the index.
	Name() string

	// Get returns the record associated with k.
	//
	// If the key does not exist v is the zero-value of V.
	Get(ctx context.Context, k *value.Value) (v V, err error)

	// Has returns true if k is present in the index.
	Has(ctx context.Context, k *value.Value) (ok bool, err error)

	// Set associates a record with k.
	//
	// If v is the zero-value of V (or equivalent), the key is deleted.
	Set(ctx context.Context, k *value.Value, v V) error

	// Range invokes fn for each record in the index, in ascending key order
	// as defined by [value.Compare].
	Range(ctx context.Context, fn RangeFunc[V]) error

	// RangePrefix invokes fn for each record whose key starts with p, in
	// ascending key order.
	RangePrefix(ctx context.Context, p *value.Value, fn RangeFunc[V]) error

	// Close closes the index.
	Close() error
}

// Store is a collection of indexes that map binary-value keys to records of
// type V.
type Store[V any] interface {
	// Open returns the index with the given name.
	Open(ctx context.Context, name string) (Index[V], error)
}
