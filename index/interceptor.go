package index

import (
	"context"
	"sync/atomic"

	"github.com/dogmatiq/valuekit/value"
)

// Interceptor defines functions that are invoked around index operations.
type Interceptor[V any] struct {
	beforeOpen atomic.Pointer[func(string) error]
	beforeSet  atomic.Pointer[func(string, *value.Value, V) error]
	afterSet   atomic.Pointer[func(string, *value.Value, V) error]
}

// BeforeOpen sets the function that is invoked before an [Index] is opened.
func (i *Interceptor[V]) BeforeOpen(fn func(name string) error) {
	storeFn(&i.beforeOpen, fn)
}

// BeforeSet sets the function that is invoked before a record is set.
func (i *Interceptor[V]) BeforeSet(fn func(index string, k *value.Value, v V) error) {
	storeFn(&i.beforeSet, fn)
}

// AfterSet sets the function that is invoked after a record is set.
func (i *Interceptor[V]) AfterSet(fn func(index string, k *value.Value, v V) error) {
	storeFn(&i.afterSet, fn)
}

// WithInterceptor returns a [Store] that invokes the functions defined by the
// given [Interceptor] when performing operations on s.
func WithInterceptor[V any](s Store[V], in *Interceptor[V]) Store[V] {
	if in == nil {
		return s
	}

	return &interceptedStore[V]{
		Next:        s,
		Interceptor: in,
	}
}

func storeFn[F any](dst *atomic.Pointer[F], fn F) {
	dst.Store(&fn)
}

func loadFn[F any](src *atomic.Pointer[F]) F {
	var zero F
	if fn := src.Load(); fn != nil {
		return *fn
	}
	return zero
}

type interceptedStore[V any] struct {
	Next        Store[V]
	Interceptor *Interceptor[V]
}

func (s *interceptedStore[V]) Open(ctx context.Context, name string) (Index[V], error) {
	if fn := loadFn(&s.Interceptor.beforeOpen); fn != nil {
		if err := fn(name); err != nil {
			return nil, err
		}
	}

	next, err := s.Next.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	return &interceptedIndex[V]{
		Next:        next,
		index:       next.Name(),
		Interceptor: s.Interceptor,
	}, nil
}

type interceptedIndex[V any] struct {
	Next        Index[V]
	index       string
	Interceptor *Interceptor[V]
}

func (idx *interceptedIndex[V]) Name() string {
	return idx.Next.Name()
}

func (idx *interceptedIndex[V]) Get(ctx context.Context, k *value.Value) (V, error) {
	return idx.Next.Get(ctx, k)
}

func (idx *interceptedIndex[V]) Has(ctx context.Context, k *value.Value) (bool, error) {
	return idx.Next.Has(ctx, k)
}

func (idx *interceptedIndex[V]) Set(ctx context.Context, k *value.Value, v V) error {
	if fn := loadFn(&idx.Interceptor.beforeSet); fn != nil {
		if err := fn(idx.index, k, v); err != nil {
			return err
		}
	}

	if err := idx.Next.Set(ctx, k, v); err != nil {
		return err
	}

	if fn := loadFn(&idx.Interceptor.afterSet); fn != nil {
		if err := fn(idx.index, k, v); err != nil {
			return err
		}
	}

	return nil
}

func (idx *interceptedIndex[V]) Range(ctx context.Context, fn RangeFunc[V]) error {
	return idx.Next.Range(ctx, fn)
}

func (idx *interceptedIndex[V]) RangePrefix(ctx context.Context, p *value.Value, fn RangeFunc[V]) error {
	return idx.Next.RangePrefix(ctx, p, fn)
}

func (idx *interceptedIndex[V]) Close() error {
	return idx.Next.Close()
}
