package pgindex_test

import (
	"context"
	"testing"

	"github.com/dogmatiq/sqltest"
	. "github.com/dogmatiq/valuekit/driver/sql/postgres/pgindex"
	"github.com/dogmatiq/valuekit/index"
)

func TestStore(t *testing.T) {
	index.RunTests(t, setup(t))
}

func BenchmarkStore(b *testing.B) {
	index.RunBenchmarks(b, setup(b))
}

func setup(t testing.TB) *Store {
	ctx := context.Background()

	database, err := sqltest.NewDatabase(ctx, sqltest.PGXDriver, sqltest.PostgreSQL)
	if err != nil {
		t.Fatal(err)
	}

	db, err := database.Open()
	if err != nil {
		t.Fatal(err)
	}

	if err := CreateSchema(ctx, db); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatal(err)
		}

		if err := database.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return &Store{DB: db}
}
