package index

import (
	"context"
	"slices"
	"sort"
	"testing"

	"github.com/dogmatiq/valuekit/internal/x/xtesting"
	"github.com/dogmatiq/valuekit/value"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

// RunTests runs tests that confirm a [BinaryStore] implementation behaves
// correctly.
func RunTests(
	t *testing.T,
	store BinaryStore,
) {
	setup := func(t *testing.T) BinaryIndex {
		name := xtesting.SequentialName("index")

		idx, err := store.Open(t.Context(), name)
		if err != nil {
			t.Fatal(err)
		}

		t.Cleanup(func() {
			if err := idx.Close(); err != nil {
				t.Error(err)
			}
		})

		if idx.Name() != name {
			t.Fatalf("unexpected index name: got %q, want %q", idx.Name(), name)
		}

		return idx
	}

	key := func(t testing.TB, data ...byte) *value.Value {
		t.Helper()

		k, err := value.New(data)
		if err != nil {
			t.Fatal(err)
		}

		return k
	}

	t.Run("Store", func(t *testing.T) {
		t.Parallel()

		t.Run("Open", func(t *testing.T) {
			t.Parallel()

			t.Run("allows indexes to be opened multiple times", func(t *testing.T) {
				t.Parallel()

				idx1, err := store.Open(t.Context(), "<index>")
				if err != nil {
					t.Fatal(err)
				}
				defer idx1.Close()

				idx2, err := store.Open(t.Context(), "<index>")
				if err != nil {
					t.Fatal(err)
				}
				defer idx2.Close()

				k := value.NewString("<key>")
				expect := []byte("<record>")

				if err := idx1.Set(t.Context(), k, expect); err != nil {
					t.Fatal(err)
				}

				actual, err := idx2.Get(t.Context(), k)
				if err != nil {
					t.Fatal(err)
				}

				if diff := cmp.Diff(expect, actual); diff != "" {
					t.Fatalf("unexpected record (-want +got):\n%s", diff)
				}
			})
		})
	})

	t.Run("Index", func(t *testing.T) {
		t.Parallel()

		t.Run("Get", func(t *testing.T) {
			t.Parallel()

			t.Run("it returns an empty record if the key doesn't exist", func(t *testing.T) {
				t.Parallel()

				idx := setup(t)

				v, err := idx.Get(t.Context(), value.NewString("<key>"))
				if err != nil {
					t.Fatal(err)
				}
				if len(v) != 0 {
					t.Fatal("expected zero-length record")
				}
			})

			t.Run("it returns an empty record if the key has been deleted", func(t *testing.T) {
				t.Parallel()

				idx := setup(t)

				k := value.NewString("<key>")

				if err := idx.Set(t.Context(), k, []byte("<record>")); err != nil {
					t.Fatal(err)
				}

				if err := idx.Set(t.Context(), k, nil); err != nil {
					t.Fatal(err)
				}

				v, err := idx.Get(t.Context(), k)
				if err != nil {
					t.Fatal(err)
				}
				if len(v) != 0 {
					t.Fatal("expected zero-length record")
				}
			})

			t.Run("it treats keys structurally, not by buffer identity", func(t *testing.T) {
				t.Parallel()

				idx := setup(t)

				if err := idx.Set(
					t.Context(),
					key(t, 'a', 'b', 'c'),
					[]byte("<record>"),
				); err != nil {
					t.Fatal(err)
				}

				// Look the key up via a window over an unrelated buffer.
				k, err := value.NewRange([]byte("xabcx"), 1, 3)
				if err != nil {
					t.Fatal(err)
				}

				v, err := idx.Get(t.Context(), k)
				if err != nil {
					t.Fatal(err)
				}

				if diff := cmp.Diff([]byte("<record>"), v); diff != "" {
					t.Fatalf("unexpected record (-want +got):\n%s", diff)
				}
			})
		})

		t.Run("Has", func(t *testing.T) {
			t.Parallel()

			t.Run("it reports key presence", func(t *testing.T) {
				t.Parallel()

				idx := setup(t)

				k := value.NewString("<key>")

				ok, err := idx.Has(t.Context(), k)
				if err != nil {
					t.Fatal(err)
				}
				if ok {
					t.Fatal("did not expect key to exist")
				}

				if err := idx.Set(t.Context(), k, []byte("<record>")); err != nil {
					t.Fatal(err)
				}

				ok, err = idx.Has(t.Context(), k)
				if err != nil {
					t.Fatal(err)
				}
				if !ok {
					t.Fatal("expected key to exist")
				}
			})
		})

		t.Run("Set", func(t *testing.T) {
			t.Parallel()

			t.Run("it replaces an existing record", func(t *testing.T) {
				t.Parallel()

				idx := setup(t)

				k := value.NewString("<key>")

				if err := idx.Set(t.Context(), k, []byte("<original>")); err != nil {
					t.Fatal(err)
				}

				if err := idx.Set(t.Context(), k, []byte("<replacement>")); err != nil {
					t.Fatal(err)
				}

				v, err := idx.Get(t.Context(), k)
				if err != nil {
					t.Fatal(err)
				}

				if diff := cmp.Diff([]byte("<replacement>"), v); diff != "" {
					t.Fatalf("unexpected record (-want +got):\n%s", diff)
				}
			})

			t.Run("it deletes the key when the record is empty", func(t *testing.T) {
				t.Parallel()

				idx := setup(t)

				k := value.NewString("<key>")

				if err := idx.Set(t.Context(), k, []byte("<record>")); err != nil {
					t.Fatal(err)
				}

				if err := idx.Set(t.Context(), k, nil); err != nil {
					t.Fatal(err)
				}

				ok, err := idx.Has(t.Context(), k)
				if err != nil {
					t.Fatal(err)
				}
				if ok {
					t.Fatal("expected key to be deleted")
				}
			})
		})

		t.Run("Range", func(t *testing.T) {
			t.Parallel()

			t.Run("it ranges in ascending key order", func(t *testing.T) {
				t.Parallel()

				idx := setup(t)

				// Deliberately includes a key that is a prefix of another
				// (shorter must sort first) and a key that compares as
				// unsigned (0xFF sorts last).
				unordered := [][]byte{
					{0xFF},
					{0x01, 0x02},
					{0x01},
					{0x02},
					{0x01, 0x00},
				}

				for _, data := range unordered {
					if err := idx.Set(t.Context(), key(t, data...), []byte("<record>")); err != nil {
						t.Fatal(err)
					}
				}

				want := [][]byte{
					{0x01},
					{0x01, 0x00},
					{0x01, 0x02},
					{0x02},
					{0xFF},
				}

				var got [][]byte
				if err := idx.Range(
					t.Context(),
					func(_ context.Context, k *value.Value, _ []byte) (bool, error) {
						got = append(got, k.Bytes())
						return true, nil
					},
				); err != nil {
					t.Fatal(err)
				}

				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("unexpected key order (-want +got):\n%s", diff)
				}
			})

			t.Run("it stops ranging when fn returns false", func(t *testing.T) {
				t.Parallel()

				idx := setup(t)

				for _, data := range [][]byte{{0x01}, {0x02}, {0x03}} {
					if err := idx.Set(t.Context(), key(t, data...), []byte("<record>")); err != nil {
						t.Fatal(err)
					}
				}

				count := 0
				if err := idx.Range(
					t.Context(),
					func(context.Context, *value.Value, []byte) (bool, error) {
						count++
						return count < 2, nil
					},
				); err != nil {
					t.Fatal(err)
				}

				if count != 2 {
					t.Fatalf("unexpected number of calls: got %d, want 2", count)
				}
			})
		})

		t.Run("RangePrefix", func(t *testing.T) {
			t.Parallel()

			t.Run("it visits exactly the keys bearing the prefix", func(t *testing.T) {
				t.Parallel()

				idx := setup(t)

				for _, k := range []string{"app", "apple", "applesauce", "apricot", "banana"} {
					if err := idx.Set(t.Context(), value.NewString(k), []byte("<record>")); err != nil {
						t.Fatal(err)
					}
				}

				var got []string
				if err := idx.RangePrefix(
					t.Context(),
					value.NewString("appl"),
					func(_ context.Context, k *value.Value, _ []byte) (bool, error) {
						got = append(got, string(k.Bytes()))
						return true, nil
					},
				); err != nil {
					t.Fatal(err)
				}

				want := []string{"apple", "applesauce"}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("unexpected keys (-want +got):\n%s", diff)
				}
			})

			t.Run("it includes a key equal to the prefix", func(t *testing.T) {
				t.Parallel()

				idx := setup(t)

				for _, k := range []string{"app", "apple"} {
					if err := idx.Set(t.Context(), value.NewString(k), []byte("<record>")); err != nil {
						t.Fatal(err)
					}
				}

				count := 0
				if err := idx.RangePrefix(
					t.Context(),
					value.NewString("app"),
					func(context.Context, *value.Value, []byte) (bool, error) {
						count++
						return true, nil
					},
				); err != nil {
					t.Fatal(err)
				}

				if count != 2 {
					t.Fatalf("unexpected number of keys: got %d, want 2", count)
				}
			})

			t.Run("it handles a prefix with no upper bound", func(t *testing.T) {
				t.Parallel()

				idx := setup(t)

				// A prefix of 0xFF bytes has no incrementable upper bound;
				// drivers that compute an exclusive end key must not
				// mis-handle it.
				inside := [][]byte{
					{0xFF, 0xFF},
					{0xFF, 0xFF, 0x00},
					{0xFF, 0xFF, 0xFF},
				}
				outside := [][]byte{
					{0xFE, 0xFF, 0xFF},
					{0xFF, 0xFE},
				}

				for _, data := range slices.Concat(inside, outside) {
					if err := idx.Set(t.Context(), key(t, data...), []byte("<record>")); err != nil {
						t.Fatal(err)
					}
				}

				var got [][]byte
				if err := idx.RangePrefix(
					t.Context(),
					key(t, 0xFF, 0xFF),
					func(_ context.Context, k *value.Value, _ []byte) (bool, error) {
						got = append(got, k.Bytes())
						return true, nil
					},
				); err != nil {
					t.Fatal(err)
				}

				if diff := cmp.Diff(inside, got); diff != "" {
					t.Fatalf("unexpected keys (-want +got):\n%s", diff)
				}
			})
		})
	})

	t.Run("it behaves like an ordered map", func(t *testing.T) {
		t.Parallel()

		rapid.Check(t, func(t *rapid.T) {
			idx, err := store.Open(t.Context(), xtesting.SequentialName("index"))
			if err != nil {
				t.Fatal(err)
			}
			defer idx.Close()

			nonEmptyKey := rapid.StringN(1, -1, -1)

			model := map[string][]byte{}
			var keys []string

			t.Repeat(
				map[string]func(*rapid.T){
					"Set": func(t *rapid.T) {
						k := nonEmptyKey.Draw(t, "key")
						v := []byte(rapid.StringN(1, -1, -1).Draw(t, "record"))

						if err := idx.Set(t.Context(), value.NewString(k), v); err != nil {
							t.Fatal(err)
						}

						if _, ok := model[k]; !ok {
							keys = append(keys, k)
						}
						model[k] = v
					},
					"Delete": func(t *rapid.T) {
						if len(keys) == 0 {
							t.Skip("no keys to delete")
						}

						k := rapid.SampledFrom(keys).Draw(t, "key")

						if err := idx.Set(t.Context(), value.NewString(k), nil); err != nil {
							t.Fatal(err)
						}

						delete(model, k)
						keys = slices.DeleteFunc(keys, func(x string) bool {
							return x == k
						})
					},
					"Get": func(t *rapid.T) {
						k := nonEmptyKey.Draw(t, "key")

						v, err := idx.Get(t.Context(), value.NewString(k))
						if err != nil {
							t.Fatal(err)
						}

						if diff := cmp.Diff(model[k], v); diff != "" {
							t.Fatalf("unexpected record (-want +got):\n%s", diff)
						}
					},
					"Has": func(t *rapid.T) {
						k := nonEmptyKey.Draw(t, "key")

						ok, err := idx.Has(t.Context(), value.NewString(k))
						if err != nil {
							t.Fatal(err)
						}

						if _, want := model[k]; ok != want {
							t.Fatalf("unexpected presence: got %t, want %t", ok, want)
						}
					},
					"Range": func(t *rapid.T) {
						want := slices.Clone(keys)
						sort.Strings(want)

						var got []string
						if err := idx.Range(
							t.Context(),
							func(_ context.Context, k *value.Value, v []byte) (bool, error) {
								got = append(got, string(k.Bytes()))
								return true, nil
							},
						); err != nil {
							t.Fatal(err)
						}

						if len(want) == 0 {
							want = nil
						}

						if diff := cmp.Diff(want, got); diff != "" {
							t.Fatalf("unexpected keys (-want +got):\n%s", diff)
						}
					},
				},
			)
		})
	})
}
