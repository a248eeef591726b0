// Package pebbleindex provides an implementation of [index.BinaryStore] that
// persists indexes in a [Pebble] database.
//
// All indexes share a single database. Each record's key is namespaced with
// the length-prefixed index name so that distinct indexes never collide and
// the keys of each index remain contiguous in the database's keyspace.
//
// [Pebble]: https://github.com/cockroachdb/pebble
package pebbleindex

import (
	"context"
	"encoding/binary"

	"github.com/cockroachdb/pebble"
	"github.com/dogmatiq/valuekit/index"
)

// Store is an implementation of [index.BinaryStore] that persists indexes in
// a Pebble database.
type Store struct {
	DB *pebble.DB
}

// Open returns the index with the given name.
func (s *Store) Open(ctx context.Context, name string) (index.BinaryIndex, error) {
	return &idx{
		db:     s.DB,
		name:   name,
		prefix: namePrefix(name),
	}, ctx.Err()
}

// namePrefix returns the database key prefix under which the records of the
// index with the given name are stored.
//
// The name is length-prefixed rather than delimited so that names may contain
// any byte, and so that the raw record key begins immediately after the
// prefix, preserving the index's key order under Pebble's default byte-wise
// comparer.
func namePrefix(name string) []byte {
	p := make([]byte, 0, 4+len(name))
	p = binary.BigEndian.AppendUint32(p, uint32(len(name)))
	return append(p, name...)
}
