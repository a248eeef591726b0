// Package pgindex provides an implementation of [index.BinaryStore] that
// persists indexes in a PostgreSQL database.
package pgindex

import (
	"context"
	"database/sql"

	"github.com/dogmatiq/valuekit/index"
)

// Store is an implementation of [index.BinaryStore] that persists indexes in
// a PostgreSQL database.
type Store struct {
	DB *sql.DB
}

// Open returns the index with the given name.
func (s *Store) Open(_ context.Context, name string) (index.BinaryIndex, error) {
	return &idx{
		name: name,
		db:   s.DB,
	}, nil
}
