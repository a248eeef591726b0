package index

import "context"

// WithNameTransform returns a [Store] that uses x to transform the name of
// each index within s.
//
// [Index.Name] returns the untransformed name.
func WithNameTransform[V any](
	s Store[V],
	x func(string) string,
) Store[V] {
	return &nameTransformStore[V]{s, x}
}

type nameTransformStore[V any] struct {
	Store[V]
	transform func(string) string
}

func (s *nameTransformStore[V]) Open(ctx context.Context, name string) (Index[V], error) {
	idx, err := s.Store.Open(ctx, s.transform(name))
	if err != nil {
		return nil, err
	}

	return &nameTransformIndex[V]{idx, name}, nil
}

type nameTransformIndex[V any] struct {
	Index[V]
	name string
}

func (idx *nameTransformIndex[V]) Name() string {
	return idx.name
}

// WithNamePrefix returns a [Store] that adds the given prefix to all index
// names.
func WithNamePrefix[V any](s Store[V], prefix string) Store[V] {
	return WithNameTransform(
		s,
		func(name string) string {
			return prefix + name
		},
	)
}
