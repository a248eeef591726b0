package index

// BinaryStore is a collection of indexes that map binary-value keys to opaque
// binary records.
type BinaryStore = Store[[]byte]

// A BinaryIndex is an isolated, ordered collection of binary records keyed by
// binary values.
type BinaryIndex = Index[[]byte]

// A BinaryRangeFunc is a function used to range over the records in a
// [BinaryIndex].
type BinaryRangeFunc = RangeFunc[[]byte]
