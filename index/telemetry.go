package index

import (
	"context"

	"github.com/dogmatiq/valuekit/internal/telemetry"
	"github.com/dogmatiq/valuekit/internal/x/xtelemetry"
	"github.com/dogmatiq/valuekit/value"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// WithTelemetry returns a [BinaryStore] that adds telemetry to s.
func WithTelemetry(
	s BinaryStore,
	p trace.TracerProvider,
	m metric.MeterProvider,
	l log.LoggerProvider,
) BinaryStore {
	return &instrumentedStore{
		Next: s,
		Telemetry: telemetry.Provider{
			TracerProvider: p,
			MeterProvider:  m,
			LoggerProvider: l,
		},
	}
}

// instrumentedStore is a decorator that adds instrumentation to a
// [BinaryStore].
type instrumentedStore struct {
	Next      BinaryStore
	Telemetry telemetry.Provider
}

// Open returns the index with the given name.
func (s *instrumentedStore) Open(ctx context.Context, name string) (BinaryIndex, error) {
	telem := s.Telemetry.Recorder(
		"github.com/dogmatiq/valuekit/index",
		telemetry.Type("index.store", s.Next),
		telemetry.String("index.name", name),
		telemetry.String("index.handle", xtelemetry.HandleID()),
	)

	idx := &instrumentedIndex{
		Telemetry:   telem,
		OpenIndexes: telem.UpDownCounter("open_indexes", "{index}", "The number of indexes that are currently open."),
		Misses:      telem.Counter("misses", "{operation}", "The number of times the record associated with a specific key was requested but not present in the index."),
		KeyIO:       telem.Counter("key.io", "By", "The cumulative size of the keys that have been operated upon."),
		RecordIO:    telem.Counter("record.io", "By", "The cumulative size of the records that have been operated upon."),
		KeySize:     telem.Histogram("key.size", "By", "The sizes of the keys that have been operated upon."),
		RecordSize:  telem.Histogram("record.size", "By", "The sizes of the records that have been operated upon."),
	}

	ctx, span := telem.StartSpan(ctx, "index.open")
	defer span.End()

	next, err := s.Next.Open(ctx, name)
	if err != nil {
		idx.Telemetry.Error(ctx, "index.open.error", err)
		return nil, err
	}

	idx.Next = next

	idx.OpenIndexes(ctx, 1)
	idx.Telemetry.Info(ctx, "index.open.ok", "opened index")

	return idx, nil
}

// instrumentedIndex is a decorator that adds instrumentation to a
// [BinaryIndex].
type instrumentedIndex struct {
	Next      BinaryIndex
	Telemetry *telemetry.Recorder

	OpenIndexes telemetry.Instrument[int64]
	Misses      telemetry.Instrument[int64]
	KeyIO       telemetry.Instrument[int64]
	RecordIO    telemetry.Instrument[int64]
	KeySize     telemetry.Instrument[int64]
	RecordSize  telemetry.Instrument[int64]
}

func (idx *instrumentedIndex) Name() string {
	return idx.Next.Name()
}

func (idx *instrumentedIndex) Get(ctx context.Context, k *value.Value) ([]byte, error) {
	keySize := int64(k.Len())

	ctx, span := idx.Telemetry.StartSpan(
		ctx,
		"index.get",
		telemetry.Stringer("key", k),
		telemetry.Int("key_size", keySize),
	)
	defer span.End()

	idx.KeyIO(ctx, keySize, telemetry.WriteDirection)
	idx.KeySize(ctx, keySize, telemetry.WriteDirection)

	v, err := idx.Next.Get(ctx, k)
	if err != nil {
		idx.Telemetry.Error(ctx, "index.get.error", err)
		return nil, err
	}

	recordSize := int64(len(v))

	if recordSize != 0 {
		idx.RecordIO(ctx, recordSize, telemetry.ReadDirection)
		idx.RecordSize(ctx, recordSize, telemetry.ReadDirection)

		span.SetAttributes(
			telemetry.Bool("key_present", true),
			telemetry.Binary("record", v),
			telemetry.Int("record_size", recordSize),
		)

		idx.Telemetry.Info(ctx, "index.get.ok", "fetched record")
	} else {
		idx.Misses(ctx, 1)

		span.SetAttributes(
			telemetry.Bool("key_present", false),
		)

		idx.Telemetry.Info(ctx, "index.get.ok", "key not present in index")
	}

	return v, nil
}

func (idx *instrumentedIndex) Has(ctx context.Context, k *value.Value) (bool, error) {
	keySize := int64(k.Len())

	ctx, span := idx.Telemetry.StartSpan(
		ctx,
		"index.has",
		telemetry.Stringer("key", k),
		telemetry.Int("key_size", keySize),
	)
	defer span.End()

	idx.KeyIO(ctx, keySize, telemetry.WriteDirection)
	idx.KeySize(ctx, keySize, telemetry.WriteDirection)

	ok, err := idx.Next.Has(ctx, k)
	if err != nil {
		idx.Telemetry.Error(ctx, "index.has.error", err)
		return false, err
	}

	span.SetAttributes(
		telemetry.Bool("key_present", ok),
	)

	if !ok {
		idx.Misses(ctx, 1)
	}

	idx.Telemetry.Info(ctx, "index.has.ok", "checked key presence")

	return ok, nil
}

func (idx *instrumentedIndex) Set(ctx context.Context, k *value.Value, v []byte) error {
	keySize := int64(k.Len())
	recordSize := int64(len(v))

	ctx, span := idx.Telemetry.StartSpan(
		ctx,
		"index.set",
		telemetry.Stringer("key", k),
		telemetry.Int("key_size", keySize),
		telemetry.If(recordSize != 0, telemetry.Binary("record", v)),
		telemetry.Int("record_size", recordSize),
		telemetry.Bool("delete", recordSize == 0),
	)
	defer span.End()

	idx.KeyIO(ctx, keySize, telemetry.WriteDirection)
	idx.KeySize(ctx, keySize, telemetry.WriteDirection)

	if recordSize != 0 {
		idx.RecordIO(ctx, recordSize, telemetry.WriteDirection)
		idx.RecordSize(ctx, recordSize, telemetry.WriteDirection)
	}

	if err := idx.Next.Set(ctx, k, v); err != nil {
		idx.Telemetry.Error(ctx, "index.set.error", err)
		return err
	}

	idx.Telemetry.Info(ctx, "index.set.ok", "set record")

	return nil
}

func (idx *instrumentedIndex) Range(ctx context.Context, fn BinaryRangeFunc) error {
	ctx, span := idx.Telemetry.StartSpan(ctx, "index.range")
	defer span.End()

	return idx.instrumentedRange(
		ctx,
		"index.range",
		span,
		func(ctx context.Context, fn BinaryRangeFunc) error {
			return idx.Next.Range(ctx, fn)
		},
		fn,
	)
}

func (idx *instrumentedIndex) RangePrefix(ctx context.Context, p *value.Value, fn BinaryRangeFunc) error {
	ctx, span := idx.Telemetry.StartSpan(
		ctx,
		"index.range_prefix",
		telemetry.Stringer("prefix", p),
		telemetry.Int("prefix_size", int64(p.Len())),
	)
	defer span.End()

	return idx.instrumentedRange(
		ctx,
		"index.range_prefix",
		span,
		func(ctx context.Context, fn BinaryRangeFunc) error {
			return idx.Next.RangePrefix(ctx, p, fn)
		},
		fn,
	)
}

func (idx *instrumentedIndex) instrumentedRange(
	ctx context.Context,
	operation string,
	span *telemetry.Span,
	rangeFn func(context.Context, BinaryRangeFunc) error,
	fn BinaryRangeFunc,
) error {
	var (
		ranged, brk bool
		records     int64
	)

	err := rangeFn(
		ctx,
		func(ctx context.Context, k *value.Value, v []byte) (bool, error) {
			ranged = true
			records++

			keySize := int64(k.Len())
			recordSize := int64(len(v))

			idx.KeyIO(ctx, keySize, telemetry.ReadDirection)
			idx.KeySize(ctx, keySize, telemetry.ReadDirection)
			idx.RecordIO(ctx, recordSize, telemetry.ReadDirection)
			idx.RecordSize(ctx, recordSize, telemetry.ReadDirection)

			ok, err := fn(ctx, k, v)
			if !ok {
				brk = true
			}

			return ok, err
		},
	)

	span.SetAttributes(
		telemetry.Int("records_ranged", records),
		telemetry.Bool("ranged_any", ranged),
		telemetry.Bool("range_broken", brk),
	)

	if err != nil {
		idx.Telemetry.Error(ctx, operation+".error", err)
		return err
	}

	idx.Telemetry.Info(ctx, operation+".ok", "ranged over records")

	return nil
}

func (idx *instrumentedIndex) Close() error {
	ctx, span := idx.Telemetry.StartSpan(context.Background(), "index.close")
	defer span.End()

	if err := idx.Next.Close(); err != nil {
		idx.Telemetry.Error(ctx, "index.close.error", err)
		return err
	}

	idx.OpenIndexes(ctx, -1)
	idx.Telemetry.Info(ctx, "index.close.ok", "closed index")

	return nil
}
