package index_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dogmatiq/valuekit/driver/memory/memoryindex"
	"github.com/dogmatiq/valuekit/index"
	. "github.com/dogmatiq/valuekit/index"
	"github.com/dogmatiq/valuekit/value"
)

func TestWithInterceptor(t *testing.T) {
	t.Parallel()

	setup := func() (BinaryStore, *Interceptor[[]byte]) {
		var in Interceptor[[]byte]
		return WithInterceptor[[]byte](&memoryindex.Store{}, &in), &in
	}

	index.RunTests(
		t,
		WithInterceptor[[]byte](
			&memoryindex.Store{},
			&Interceptor[[]byte]{},
		),
	)

	t.Run("it returns the given store if no interceptor is provided", func(t *testing.T) {
		t.Parallel()

		underlying := &memoryindex.Store{}
		store := WithInterceptor[[]byte](underlying, nil)

		if store != BinaryStore(underlying) {
			t.Fatalf("unexpected store: got %T, want %T", store, underlying)
		}
	})

	t.Run("it invokes the BeforeOpen function", func(t *testing.T) {
		t.Parallel()

		store, in := setup()

		want := errors.New("<error>")
		in.BeforeOpen(func(name string) error {
			return want
		})

		_, got := store.Open(t.Context(), "<index>")
		if got != want {
			t.Fatalf("unexpected error: got %v, want %v", got, want)
		}
	})

	t.Run("it invokes the BeforeSet function", func(t *testing.T) {
		t.Parallel()

		store, in := setup()

		want := errors.New("<error>")
		in.BeforeSet(func(string, *value.Value, []byte) error {
			return want
		})

		idx, err := store.Open(t.Context(), "<index>")
		if err != nil {
			t.Fatal(err)
		}
		defer idx.Close()

		k := value.NewString("<key>")

		err = idx.Set(t.Context(), k, []byte("<record>"))
		if err != want {
			t.Fatalf("unexpected error: got %v, want %v", err, want)
		}

		ok, err := idx.Has(t.Context(), k)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("did not expect the record to be set")
		}
	})

	t.Run("it invokes the AfterSet function", func(t *testing.T) {
		t.Parallel()

		store, in := setup()

		want := errors.New("<error>")
		in.AfterSet(func(string, *value.Value, []byte) error {
			return want
		})

		idx, err := store.Open(t.Context(), "<index>")
		if err != nil {
			t.Fatal(err)
		}
		defer idx.Close()

		k := value.NewString("<key>")

		err = idx.Set(t.Context(), k, []byte("<record>"))
		if err != want {
			t.Fatalf("unexpected error: got %v, want %v", err, want)
		}

		v, err := idx.Get(t.Context(), k)
		if err != nil {
			t.Fatal(err)
		}

		if !bytes.Equal(v, []byte("<record>")) {
			t.Fatalf("unexpected record: got %q, want %q", string(v), "<record>")
		}
	})

	t.Run("it allows functions to be cleared", func(t *testing.T) {
		t.Parallel()

		store, in := setup()

		in.BeforeOpen(func(string) error {
			t.Fatal("unexpected call")
			return nil
		})

		in.BeforeSet(func(string, *value.Value, []byte) error {
			t.Fatal("unexpected call")
			return nil
		})

		in.AfterSet(func(string, *value.Value, []byte) error {
			t.Fatal("unexpected call")
			return nil
		})

		in.BeforeOpen(nil)
		in.BeforeSet(nil)
		in.AfterSet(nil)

		idx, err := store.Open(t.Context(), "<index>")
		if err != nil {
			t.Fatal(err)
		}
		defer idx.Close()

		if err := idx.Set(t.Context(), value.NewString("<key>"), []byte("<record>")); err != nil {
			t.Fatal(err)
		}
	})
}
