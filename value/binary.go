package value

import (
	"bytes"
	"encoding/binary"
	"io"
)

// headerSize is the size of the envelope header, comprising the hash field
// and the payload length, both big-endian uint32.
const headerSize = 8

// hashUnset is the wire representation of an empty hash cache.
//
// A computed hash that happens to equal this sentinel is written verbatim
// and read back as unset, causing one redundant recomputation after a round
// trip. That is an inefficiency, not a correctness defect; the payload bytes
// alone determine the hash.
const hashUnset = 0xFFFFFFFF

// EncodedSize returns the number of bytes produced by [Value.Encode], which
// is 8 bytes of header plus the viewed length.
func (v *Value) EncodedSize() int {
	return headerSize + v.n
}

// Encode writes the value to w using its binary envelope:
//
//	[ hash : 4 bytes ][ length : 4 bytes ][ payload : length bytes ]
//
// All header fields are big-endian. The hash field holds whatever currently
// occupies the hash cache; encoding never forces hash computation, and an
// empty cache is written as the unset sentinel. Failures of w are propagated
// unchanged.
//
// This layout is the canonical persisted representation of a value and must
// not change.
func (v *Value) Encode(w io.Writer) error {
	var hdr [headerSize]byte

	sum := uint32(hashUnset)
	if cached, ok := v.hash.Load(); ok {
		sum = cached
	}

	binary.BigEndian.PutUint32(hdr[0:], sum)
	binary.BigEndian.PutUint32(hdr[4:], uint32(v.n))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	_, err := w.Write(v.view())
	return err
}

// Decode reads a value in its binary envelope from r.
//
// The decoded value owns a freshly allocated backing buffer that spans
// exactly the declared payload. The hash field is restored verbatim, so a
// value that was encoded with a computed hash does not recompute it on first
// use.
//
// It returns a [TruncatedError] if r ends before the declared payload has
// been read in full. Other failures of r are propagated unchanged.
func Decode(r io.Reader) (*Value, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	sum := binary.BigEndian.Uint32(hdr[0:])
	n := int(binary.BigEndian.Uint32(hdr[4:]))

	data := make([]byte, n)
	read, err := io.ReadFull(r, data)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, TruncatedError{
				Expected: n,
				Actual:   read,
			}
		}
		return nil, err
	}

	v := &Value{
		data: data,
		n:    n,
	}

	if sum != hashUnset {
		v.hash.Store(sum)
	}

	return v, nil
}

// MarshalBinary returns the binary envelope of v, as produced by
// [Value.Encode].
func (v *Value) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, v.EncodedSize()))
	if err := v.Encode(buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalValue returns the value encoded in data, which must hold a binary
// envelope as produced by [Value.MarshalBinary].
func UnmarshalValue(data []byte) (*Value, error) {
	return Decode(bytes.NewReader(data))
}

// WriteTo writes the viewed bytes to w, without the envelope header.
//
// It implements [io.WriterTo]. Failures of w are propagated unchanged.
func (v *Value) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(v.view())
	return int64(n), err
}

// WriteRangeTo writes the n viewed bytes beginning at pos to w, without the
// envelope header.
//
// It returns an [OutOfBoundsError] if the requested range does not fit
// within the view. Failures of w are propagated unchanged.
func (v *Value) WriteRangeTo(w io.Writer, pos, n int) (int64, error) {
	if pos < 0 || n < 0 || pos+n > v.n {
		return 0, OutOfBoundsError{
			Offset:   pos,
			Length:   n,
			Capacity: v.n,
		}
	}

	written, err := w.Write(v.data[v.pos+pos : v.pos+pos+n])
	return int64(written), err
}

// CopyTo copies the viewed bytes into dst, beginning at pos.
//
// It returns the number of bytes copied, or an [OutOfBoundsError] if dst
// cannot hold the viewed bytes at that position.
func (v *Value) CopyTo(dst []byte, pos int) (int, error) {
	return v.CopyRange(dst, pos, v.n)
}

// CopyRange copies the first n viewed bytes into dst, beginning at pos.
//
// It returns the number of bytes copied, or an [OutOfBoundsError] if n
// exceeds the view or dst cannot hold n bytes at that position.
func (v *Value) CopyRange(dst []byte, pos, n int) (int, error) {
	if n < 0 || n > v.n {
		return 0, OutOfBoundsError{
			Offset:   0,
			Length:   n,
			Capacity: v.n,
		}
	}

	if pos < 0 || pos+n > len(dst) {
		return 0, OutOfBoundsError{
			Offset:   pos,
			Length:   n,
			Capacity: len(dst),
		}
	}

	return copy(dst[pos:pos+n], v.data[v.pos:v.pos+n]), nil
}
