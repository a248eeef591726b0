package index

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/dogmatiq/valuekit/internal/x/xtesting"
	"github.com/dogmatiq/valuekit/value"
)

// RunBenchmarks runs benchmarks against a [BinaryStore] implementation.
func RunBenchmarks(
	b *testing.B,
	store BinaryStore,
) {
	b.Run("Store", func(b *testing.B) {
		b.Run("Open", func(b *testing.B) {
			b.Run("existing index", func(b *testing.B) {
				var (
					name string
					idx  BinaryIndex
				)

				xtesting.Benchmark(
					b,
					// SETUP
					func(ctx context.Context) error {
						name = xtesting.SequentialName("index")

						// pre-create the index
						idx, err := store.Open(ctx, name)
						if err != nil {
							return err
						}
						return idx.Close()
					},
					// BEFORE EACH
					nil,
					// BENCHMARKED CODE
					func(ctx context.Context) (err error) {
						idx, err = store.Open(ctx, name)
						return err
					},
					// AFTER EACH
					func(context.Context) error {
						return idx.Close()
					},
				)
			})
		})
	})

	b.Run("Index", func(b *testing.B) {
		b.Run("Get", func(b *testing.B) {
			b.Run("non-existent key", func(b *testing.B) {
				var key *value.Value

				benchmarkIndex(
					b,
					store,
					// SETUP
					nil,
					// BEFORE EACH
					func(context.Context, BinaryIndex) (err error) {
						key, err = randomKey()
						return err
					},
					// BENCHMARKED CODE
					func(ctx context.Context, idx BinaryIndex) error {
						_, err := idx.Get(ctx, key)
						return err
					},
					// AFTER EACH
					nil,
				)
			})

			b.Run("existing key", func(b *testing.B) {
				var key *value.Value

				benchmarkIndex(
					b,
					store,
					// SETUP
					nil,
					// BEFORE EACH
					func(ctx context.Context, idx BinaryIndex) (err error) {
						key, err = randomKey()
						if err != nil {
							return err
						}
						return idx.Set(ctx, key, []byte("<record>"))
					},
					// BENCHMARKED CODE
					func(ctx context.Context, idx BinaryIndex) error {
						_, err := idx.Get(ctx, key)
						return err
					},
					// AFTER EACH
					nil,
				)
			})
		})

		b.Run("Set", func(b *testing.B) {
			b.Run("non-existent key", func(b *testing.B) {
				var key *value.Value

				benchmarkIndex(
					b,
					store,
					// SETUP
					nil,
					// BEFORE EACH
					func(context.Context, BinaryIndex) (err error) {
						key, err = randomKey()
						return err
					},
					// BENCHMARKED CODE
					func(ctx context.Context, idx BinaryIndex) error {
						return idx.Set(ctx, key, []byte("<record>"))
					},
					// AFTER EACH
					nil,
				)
			})
		})

		b.Run("Range", func(b *testing.B) {
			benchmarkIndex(
				b,
				store,
				// SETUP
				func(ctx context.Context, _ BinaryStore, idx BinaryIndex) error {
					for range 100 {
						key, err := randomKey()
						if err != nil {
							return err
						}

						if err := idx.Set(ctx, key, []byte("<record>")); err != nil {
							return err
						}
					}
					return nil
				},
				// BEFORE EACH
				nil,
				// BENCHMARKED CODE
				func(ctx context.Context, idx BinaryIndex) error {
					return idx.Range(
						ctx,
						func(context.Context, *value.Value, []byte) (bool, error) {
							return true, nil
						},
					)
				},
				// AFTER EACH
				nil,
			)
		})
	})
}

func randomKey() (*value.Value, error) {
	var data [32]byte
	if _, err := io.ReadFull(rand.Reader, data[:]); err != nil {
		return nil, err
	}
	return value.New(data[:])
}

func benchmarkIndex(
	b *testing.B,
	store BinaryStore,
	setup func(context.Context, BinaryStore, BinaryIndex) error,
	before func(context.Context, BinaryIndex) error,
	fn func(context.Context, BinaryIndex) error,
	after func() error,
) {
	var idx BinaryIndex

	xtesting.Benchmark(
		b,
		func(ctx context.Context) error {
			var err error
			idx, err = store.Open(ctx, xtesting.SequentialName("index"))
			if err != nil {
				return err
			}

			b.Cleanup(func() {
				idx.Close()
			})

			if setup != nil {
				return setup(ctx, store, idx)
			}

			return nil
		},
		func(ctx context.Context) error {
			if before != nil {
				return before(ctx, idx)
			}
			return nil
		},
		func(ctx context.Context) error {
			return fn(ctx, idx)
		},
		func(context.Context) error {
			if after != nil {
				return after()
			}
			return nil
		},
	)
}
