package value_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	. "github.com/dogmatiq/valuekit/value"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("it views the entire buffer without copying", func(t *testing.T) {
		t.Parallel()

		data := []byte{0x01, 0x02, 0x03}

		v, err := New(data)
		if err != nil {
			t.Fatal(err)
		}

		if v.Position() != 0 {
			t.Fatalf("unexpected position: got %d, want 0", v.Position())
		}

		if v.Len() != 3 {
			t.Fatalf("unexpected length: got %d, want 3", v.Len())
		}

		// A whole-buffer view returns the backing buffer itself.
		got := v.Bytes()
		if &got[0] != &data[0] {
			t.Fatal("expected Bytes() to alias the backing buffer")
		}
	})

	t.Run("it accepts an empty buffer", func(t *testing.T) {
		t.Parallel()

		v, err := New([]byte{})
		if err != nil {
			t.Fatal(err)
		}

		if v.Len() != 0 {
			t.Fatalf("unexpected length: got %d, want 0", v.Len())
		}
	})

	t.Run("it fails if the buffer is nil", func(t *testing.T) {
		t.Parallel()

		if _, err := New(nil); !errors.Is(err, ErrNilBuffer) {
			t.Fatalf("unexpected error: got %v, want %v", err, ErrNilBuffer)
		}
	})
}

func TestNewRange(t *testing.T) {
	t.Parallel()

	t.Run("it views a sub-range without copying", func(t *testing.T) {
		t.Parallel()

		data := []byte("abcdef")

		v, err := NewRange(data, 2, 3)
		if err != nil {
			t.Fatal(err)
		}

		if v.Position() != 2 {
			t.Fatalf("unexpected position: got %d, want 2", v.Position())
		}

		if v.Len() != 3 {
			t.Fatalf("unexpected length: got %d, want 3", v.Len())
		}

		if diff := cmp.Diff([]byte("cde"), v.Bytes()); diff != "" {
			t.Fatalf("unexpected bytes (-want +got):\n%s", diff)
		}
	})

	t.Run("it copies when extracting a partial view", func(t *testing.T) {
		t.Parallel()

		data := []byte("abcdef")

		v, err := NewRange(data, 0, 3)
		if err != nil {
			t.Fatal(err)
		}

		got := v.Bytes()
		if &got[0] == &data[0] {
			t.Fatal("expected Bytes() to return a copy for a partial view")
		}
	})

	t.Run("it fails if the range exceeds the buffer", func(t *testing.T) {
		t.Parallel()

		_, err := NewRange([]byte("abc"), 2, 2)
		if !IsOutOfBounds(err) {
			t.Fatalf("unexpected error: got %v, want out-of-bounds", err)
		}
	})

	t.Run("it fails if the offset is negative", func(t *testing.T) {
		t.Parallel()

		_, err := NewRange([]byte("abc"), -1, 2)
		if !IsOutOfBounds(err) {
			t.Fatalf("unexpected error: got %v, want out-of-bounds", err)
		}
	})
}

func TestNewString(t *testing.T) {
	t.Parallel()

	v := NewString("hello")

	if diff := cmp.Diff([]byte("hello"), v.Bytes()); diff != "" {
		t.Fatalf("unexpected bytes (-want +got):\n%s", diff)
	}
}

func TestNewInt64(t *testing.T) {
	t.Parallel()

	v := NewInt64(0x0102030405060708)

	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	if diff := cmp.Diff(want, v.Bytes()); diff != "" {
		t.Fatalf("unexpected bytes (-want +got):\n%s", diff)
	}

	if v.Len() != 8 {
		t.Fatalf("unexpected length: got %d, want 8", v.Len())
	}
}

func TestValue_Reader(t *testing.T) {
	t.Parallel()

	t.Run("it reads exactly the viewed range", func(t *testing.T) {
		t.Parallel()

		v, err := NewRange([]byte("abcdef"), 1, 4)
		if err != nil {
			t.Fatal(err)
		}

		got, err := io.ReadAll(v.Reader())
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff([]byte("bcde"), got); diff != "" {
			t.Fatalf("unexpected bytes (-want +got):\n%s", diff)
		}
	})

	t.Run("each reader has an independent cursor", func(t *testing.T) {
		t.Parallel()

		v := NewString("abc")

		r1 := v.Reader()
		if _, err := r1.ReadByte(); err != nil {
			t.Fatal(err)
		}

		r2 := v.Reader()
		b, err := r2.ReadByte()
		if err != nil {
			t.Fatal(err)
		}

		if b != 'a' {
			t.Fatalf("unexpected byte: got %q, want %q", b, byte('a'))
		}
	})
}

func TestValue_Clone(t *testing.T) {
	t.Parallel()

	t.Run("it detaches from the original buffer", func(t *testing.T) {
		t.Parallel()

		data := []byte("abcdef")

		v, err := NewRange(data, 2, 3)
		if err != nil {
			t.Fatal(err)
		}

		c := v.Clone()

		if c.Position() != 0 {
			t.Fatalf("unexpected position: got %d, want 0", c.Position())
		}

		if !c.Equal(v) {
			t.Fatal("expected clone to equal the original")
		}

		got := c.Bytes()
		if &got[0] == &data[2] {
			t.Fatal("expected clone to own its backing buffer")
		}
	})

	t.Run("it carries the cached hash", func(t *testing.T) {
		t.Parallel()

		v := NewString("abc")
		want := v.Hash()

		if got := v.Clone().Hash(); got != want {
			t.Fatalf("unexpected hash: got %#x, want %#x", got, want)
		}
	})
}

func TestValue_usageCount(t *testing.T) {
	t.Parallel()

	v := NewString("abc")

	if n := v.Retain(); n != 1 {
		t.Fatalf("unexpected count: got %d, want 1", n)
	}

	if n := v.Retain(); n != 2 {
		t.Fatalf("unexpected count: got %d, want 2", n)
	}

	if n := v.Release(); n != 1 {
		t.Fatalf("unexpected count: got %d, want 1", n)
	}

	if n := v.Release(); n != 0 {
		t.Fatalf("unexpected count: got %d, want 0", n)
	}
}

func TestValue_WriteTo(t *testing.T) {
	t.Parallel()

	t.Run("it writes the viewed bytes only", func(t *testing.T) {
		t.Parallel()

		v, err := NewRange([]byte("abcdef"), 1, 3)
		if err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		n, err := v.WriteTo(&buf)
		if err != nil {
			t.Fatal(err)
		}

		if n != 3 {
			t.Fatalf("unexpected count: got %d, want 3", n)
		}

		if diff := cmp.Diff([]byte("bcd"), buf.Bytes()); diff != "" {
			t.Fatalf("unexpected bytes (-want +got):\n%s", diff)
		}
	})

	t.Run("it propagates sink failures unchanged", func(t *testing.T) {
		t.Parallel()

		sinkErr := errors.New("<sink failure>")
		v := NewString("abc")

		if _, err := v.WriteTo(failWriter{sinkErr}); err != sinkErr {
			t.Fatalf("unexpected error: got %v, want %v", err, sinkErr)
		}
	})
}

func TestValue_WriteRangeTo(t *testing.T) {
	t.Parallel()

	t.Run("it writes the requested sub-range", func(t *testing.T) {
		t.Parallel()

		v, err := NewRange([]byte("abcdef"), 1, 4) // "bcde"
		if err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		if _, err := v.WriteRangeTo(&buf, 1, 2); err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff([]byte("cd"), buf.Bytes()); diff != "" {
			t.Fatalf("unexpected bytes (-want +got):\n%s", diff)
		}
	})

	t.Run("it fails if the sub-range exceeds the view", func(t *testing.T) {
		t.Parallel()

		v := NewString("abc")

		var buf bytes.Buffer
		if _, err := v.WriteRangeTo(&buf, 2, 2); !IsOutOfBounds(err) {
			t.Fatalf("unexpected error: got %v, want out-of-bounds", err)
		}
	})
}

func TestValue_CopyTo(t *testing.T) {
	t.Parallel()

	t.Run("it copies into caller-supplied storage", func(t *testing.T) {
		t.Parallel()

		v := NewString("abc")

		dst := make([]byte, 5)
		n, err := v.CopyTo(dst, 1)
		if err != nil {
			t.Fatal(err)
		}

		if n != 3 {
			t.Fatalf("unexpected count: got %d, want 3", n)
		}

		if diff := cmp.Diff([]byte{0, 'a', 'b', 'c', 0}, dst); diff != "" {
			t.Fatalf("unexpected bytes (-want +got):\n%s", diff)
		}
	})

	t.Run("it fails if the destination cannot hold the range", func(t *testing.T) {
		t.Parallel()

		v := NewString("abc")

		if _, err := v.CopyTo(make([]byte, 3), 1); !IsOutOfBounds(err) {
			t.Fatalf("unexpected error: got %v, want out-of-bounds", err)
		}
	})

	t.Run("it fails if the requested length exceeds the view", func(t *testing.T) {
		t.Parallel()

		v := NewString("abc")

		if _, err := v.CopyRange(make([]byte, 10), 0, 4); !IsOutOfBounds(err) {
			t.Fatalf("unexpected error: got %v, want out-of-bounds", err)
		}
	})
}

func TestValue_AppendTo(t *testing.T) {
	t.Parallel()

	v, err := NewRange([]byte("abcdef"), 3, 2)
	if err != nil {
		t.Fatal(err)
	}

	got := v.AppendTo([]byte("x"))

	if diff := cmp.Diff([]byte("xde"), got); diff != "" {
		t.Fatalf("unexpected bytes (-want +got):\n%s", diff)
	}
}

// failWriter is an [io.Writer] that always fails with a fixed error.
type failWriter struct {
	err error
}

func (w failWriter) Write([]byte) (int, error) {
	return 0, w.err
}
