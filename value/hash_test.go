package value_test

import (
	"sync"
	"testing"

	. "github.com/dogmatiq/valuekit/value"
)

func TestValue_Hash(t *testing.T) {
	t.Parallel()

	t.Run("it is stable across repeated calls", func(t *testing.T) {
		t.Parallel()

		v := NewString("<value>")

		want := v.Hash()
		for range 3 {
			if got := v.Hash(); got != want {
				t.Fatalf("unexpected hash: got %#x, want %#x", got, want)
			}
		}
	})

	t.Run("it is a function of the viewed bytes only", func(t *testing.T) {
		t.Parallel()

		whole := NewString("bcd")

		windowed, err := NewRange([]byte("abcdef"), 1, 3)
		if err != nil {
			t.Fatal(err)
		}

		if whole.Hash() != windowed.Hash() {
			t.Fatalf(
				"unexpected hash: got %#x, want %#x",
				windowed.Hash(),
				whole.Hash(),
			)
		}
	})

	t.Run("distinct content is unlikely to collide", func(t *testing.T) {
		t.Parallel()

		// Not a guarantee, but a regression guard against hashing the wrong
		// range of the backing buffer.
		if NewString("abc").Hash() == NewString("abd").Hash() {
			t.Fatal("expected distinct content to produce distinct hashes")
		}
	})

	t.Run("concurrent first access is benign", func(t *testing.T) {
		t.Parallel()

		v := NewString("<value>")
		want := NewString("<value>").Hash()

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()

				if got := v.Hash(); got != want {
					t.Errorf("unexpected hash: got %#x, want %#x", got, want)
				}
			}()
		}

		wg.Wait()
	})
}
