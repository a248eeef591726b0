// Package memoryindex provides an in-memory implementation of
// [index.BinaryStore].
package memoryindex

import (
	"context"
	"sync"

	"github.com/dogmatiq/valuekit/index"
	"github.com/dogmatiq/valuekit/value"
)

// Store is an in-memory implementation of [index.BinaryStore].
type Store struct {
	// BeforeSet, if non-nil, is called before a record is set.
	BeforeSet func(name string, k *value.Value, v []byte) error

	// AfterSet, if non-nil, is called after a record is set.
	AfterSet func(name string, k *value.Value, v []byte) error

	indexes sync.Map // map[string]*state
}

// Open returns the index with the given name.
func (s *Store) Open(ctx context.Context, name string) (index.BinaryIndex, error) {
	st, ok := s.indexes.Load(name)

	if !ok {
		st, _ = s.indexes.LoadOrStore(
			name,
			&state{},
		)
	}

	return &idx{
		name:      name,
		state:     st.(*state),
		beforeSet: s.BeforeSet,
		afterSet:  s.AfterSet,
	}, ctx.Err()
}
