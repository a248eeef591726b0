package memoryindex_test

import (
	"testing"

	. "github.com/dogmatiq/valuekit/driver/memory/memoryindex"
	"github.com/dogmatiq/valuekit/index"
)

func TestStore(t *testing.T) {
	index.RunTests(t, &Store{})
}

func BenchmarkStore(b *testing.B) {
	index.RunBenchmarks(b, &Store{})
}
