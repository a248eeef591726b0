package value_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	. "github.com/dogmatiq/valuekit/value"
)

func TestValue_Encode(t *testing.T) {
	t.Parallel()

	t.Run("it produces the documented envelope", func(t *testing.T) {
		t.Parallel()

		v, err := New([]byte{0xFF, 0x00, 0x10})
		if err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		if err := v.Encode(&buf); err != nil {
			t.Fatal(err)
		}

		want := []byte{
			0xFF, 0xFF, 0xFF, 0xFF, // hash (unset)
			0x00, 0x00, 0x00, 0x03, // length
			0xFF, 0x00, 0x10, // payload
		}

		if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
			t.Fatalf("unexpected envelope (-want +got):\n%s", diff)
		}
	})

	t.Run("it does not force hash computation", func(t *testing.T) {
		t.Parallel()

		v := NewString("<value>")

		var buf bytes.Buffer
		if err := v.Encode(&buf); err != nil {
			t.Fatal(err)
		}

		if !bytes.Equal(buf.Bytes()[:4], []byte{0xFF, 0xFF, 0xFF, 0xFF}) {
			t.Fatal("expected the hash field to remain unset")
		}
	})

	t.Run("it writes a computed hash verbatim", func(t *testing.T) {
		t.Parallel()

		v := NewString("<value>")
		want := v.Hash()

		var buf bytes.Buffer
		if err := v.Encode(&buf); err != nil {
			t.Fatal(err)
		}

		if got := binary.BigEndian.Uint32(buf.Bytes()); got != want {
			t.Fatalf("unexpected hash field: got %#x, want %#x", got, want)
		}
	})

	t.Run("it propagates sink failures unchanged", func(t *testing.T) {
		t.Parallel()

		sinkErr := errors.New("<sink failure>")

		if err := NewString("<value>").Encode(failWriter{sinkErr}); err != sinkErr {
			t.Fatalf("unexpected error: got %v, want %v", err, sinkErr)
		}
	})
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("it round-trips length and content", func(t *testing.T) {
		t.Parallel()

		v, err := New([]byte{0xFF, 0x00, 0x10})
		if err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		if err := v.Encode(&buf); err != nil {
			t.Fatal(err)
		}

		got, err := Decode(&buf)
		if err != nil {
			t.Fatal(err)
		}

		if got.Len() != 3 {
			t.Fatalf("unexpected length: got %d, want 3", got.Len())
		}

		if got.Position() != 0 {
			t.Fatalf("unexpected position: got %d, want 0", got.Position())
		}

		if !got.Equal(v) {
			t.Fatalf("unexpected content: got %s, want %s", got, v)
		}
	})

	t.Run("it restores the hash field verbatim", func(t *testing.T) {
		t.Parallel()

		// An envelope bearing a deliberately incorrect hash field proves
		// that decoding restores the field rather than recomputing it.
		env := []byte{
			0xDE, 0xAD, 0xBE, 0xEF, // hash
			0x00, 0x00, 0x00, 0x01, // length
			'x', // payload
		}

		v, err := Decode(bytes.NewReader(env))
		if err != nil {
			t.Fatal(err)
		}

		if got := v.Hash(); got != 0xDEADBEEF {
			t.Fatalf("unexpected hash: got %#x, want 0xdeadbeef", got)
		}
	})

	t.Run("it recomputes lazily when the hash field is unset", func(t *testing.T) {
		t.Parallel()

		v := NewString("<value>")

		env, err := v.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}

		got, err := UnmarshalValue(env)
		if err != nil {
			t.Fatal(err)
		}

		if got.Hash() != v.Hash() {
			t.Fatalf("unexpected hash: got %#x, want %#x", got.Hash(), v.Hash())
		}
	})

	t.Run("it fails if the payload is truncated", func(t *testing.T) {
		t.Parallel()

		env := []byte{
			0xFF, 0xFF, 0xFF, 0xFF,
			0x00, 0x00, 0x00, 0x05, // declares 5 payload bytes
			'x', 'y', // only 2 available
		}

		_, err := Decode(bytes.NewReader(env))
		if !IsTruncated(err) {
			t.Fatalf("unexpected error: got %v, want truncated", err)
		}

		var truncated TruncatedError
		if !errors.As(err, &truncated) {
			t.Fatal(err)
		}

		if truncated.Expected != 5 || truncated.Actual != 2 {
			t.Fatalf(
				"unexpected error detail: got (%d, %d), want (5, 2)",
				truncated.Expected,
				truncated.Actual,
			)
		}
	})

	t.Run("it propagates stream failures during the header read", func(t *testing.T) {
		t.Parallel()

		if _, err := Decode(bytes.NewReader(nil)); err != io.EOF {
			t.Fatalf("unexpected error: got %v, want %v", err, io.EOF)
		}
	})

	t.Run("round-trip properties", rapid.MakeCheck(func(t *rapid.T) {
		v := drawValue(t, "value")

		if rapid.Bool().Draw(t, "hashed") {
			v.Hash()
		}

		env, err := v.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}

		if len(env) != v.EncodedSize() {
			t.Fatalf(
				"unexpected envelope size: got %d, want %d",
				len(env),
				v.EncodedSize(),
			)
		}

		got, err := UnmarshalValue(env)
		if err != nil {
			t.Fatal(err)
		}

		if !got.Equal(v) {
			t.Fatalf("unexpected content: got %s, want %s", got, v)
		}

		if got.Hash() != v.Hash() {
			t.Fatalf("unexpected hash: got %#x, want %#x", got.Hash(), v.Hash())
		}
	}))
}

func TestValue_EncodedSize(t *testing.T) {
	t.Parallel()

	v := NewString("abc")

	if got := v.EncodedSize(); got != 11 {
		t.Fatalf("unexpected size: got %d, want 11", got)
	}
}
