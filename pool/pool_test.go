package pool_test

import (
	"errors"
	"testing"

	. "github.com/dogmatiq/valuekit/pool"
)

func TestPool(t *testing.T) {
	t.Parallel()

	t.Run("func Borrow()", func(t *testing.T) {
		t.Parallel()

		t.Run("it leases a buffer of the requested size", func(t *testing.T) {
			t.Parallel()

			p := New()
			l := p.Borrow(16)
			defer l.Release()

			if n := l.Value().Len(); n != 16 {
				t.Fatalf("unexpected lease size: got %d, want 16", n)
			}
		})

		t.Run("it serves leases larger than the buffer capacity", func(t *testing.T) {
			t.Parallel()

			p := New(WithBufferCapacity(8))
			l := p.Borrow(64)
			defer l.Release()

			if n := l.Value().Len(); n != 64 {
				t.Fatalf("unexpected lease size: got %d, want 64", n)
			}
		})

		t.Run("it leases values with a usage count of one", func(t *testing.T) {
			t.Parallel()

			p := New()
			l := p.Borrow(4)

			if err := l.Release(); err != nil {
				t.Fatal(err)
			}

			if err := l.Release(); !errors.Is(err, ErrLeaseReleased) {
				t.Fatalf("unexpected error: got %v, want %v", err, ErrLeaseReleased)
			}
		})
	})

	t.Run("type Lease", func(t *testing.T) {
		t.Parallel()

		t.Run("func Release()", func(t *testing.T) {
			t.Parallel()

			t.Run("it keeps the lease alive until all holders release it", func(t *testing.T) {
				t.Parallel()

				p := New()
				l := p.Borrow(4)

				l.Retain()
				l.Retain()

				for range 2 {
					if err := l.Release(); err != nil {
						t.Fatal(err)
					}

					// The lease is still held, so the value must remain
					// usable.
					if n := l.Value().Len(); n != 4 {
						t.Fatalf("unexpected lease size: got %d, want 4", n)
					}
				}

				if err := l.Release(); err != nil {
					t.Fatal(err)
				}

				if err := l.Release(); !errors.Is(err, ErrLeaseReleased) {
					t.Fatalf("unexpected error: got %v, want %v", err, ErrLeaseReleased)
				}
			})
		})

		t.Run("func Retain()", func(t *testing.T) {
			t.Parallel()

			t.Run("it panics if the lease has been fully released", func(t *testing.T) {
				t.Parallel()

				p := New()
				l := p.Borrow(4)

				if err := l.Release(); err != nil {
					t.Fatal(err)
				}

				defer func() {
					if recover() == nil {
						t.Fatal("expected a panic")
					}
				}()

				l.Retain()
			})
		})
	})
}
