package pebbleindex_test

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	. "github.com/dogmatiq/valuekit/driver/pebble/pebbleindex"
	"github.com/dogmatiq/valuekit/index"
)

func TestStore(t *testing.T) {
	index.RunTests(t, setup(t))
}

func BenchmarkStore(b *testing.B) {
	index.RunBenchmarks(b, setup(b))
}

func setup(t testing.TB) *Store {
	db, err := pebble.Open(
		"",
		&pebble.Options{
			FS: vfs.NewMem(),
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Error(err)
		}
	})

	return &Store{DB: db}
}
