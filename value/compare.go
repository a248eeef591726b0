package value

// Compare returns an integer describing the relative order of a and b.
//
// The result is negative if a sorts before b, positive if a sorts after b,
// and zero if they view identical bytes. Bytes are compared as unsigned
// 8-bit integers; if one value is a prefix of the other, the shorter value
// sorts first.
//
// When the result is non-zero its magnitude is one greater than the index of
// the first differing byte. Callers must rely only on the sign.
func Compare(a, b *Value) int {
	stop := min(a.n, b.n)

	for i := range stop {
		x := a.data[a.pos+i]
		y := b.data[b.pos+i]

		if x != y {
			if x > y {
				return i + 1
			}
			return -(i + 1)
		}
	}

	if a.n == b.n {
		return 0
	}

	if a.n > b.n {
		return stop + 1
	}

	return -(stop + 1)
}

// Compare returns an integer describing the relative order of v and o, with
// the same semantics as the package-level [Compare] function.
func (v *Value) Compare(o *Value) int {
	return Compare(v, o)
}

// Equal returns true if v and o view identical bytes.
//
// Equality is structural; the identity and offset of the backing buffers are
// irrelevant.
func (v *Value) Equal(o *Value) bool {
	return v.n == o.n && Compare(v, o) == 0
}

// HasPrefix returns true if the first o.Len() bytes of v are identical to
// the bytes viewed by o.
func (v *Value) HasPrefix(o *Value) bool {
	if v.n < o.n {
		return false
	}

	for i := range o.n {
		if v.data[v.pos+i] != o.data[o.pos+i] {
			return false
		}
	}

	return true
}
