package pgindex

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dogmatiq/valuekit/index"
	"github.com/dogmatiq/valuekit/value"
)

// idx is an implementation of [index.BinaryIndex] that stores records in a
// PostgreSQL table.
//
// PostgreSQL compares BYTEA values byte-wise, ranking shorter values before
// their extensions, so ORDER BY key produces exactly the order defined by
// [value.Compare].
type idx struct {
	name string
	db   *sql.DB
}

func (x *idx) Name() string {
	return x.name
}

func (x *idx) Get(ctx context.Context, k *value.Value) ([]byte, error) {
	row := x.db.QueryRowContext(
		ctx,
		`SELECT record
		FROM valuekit.index_record
		WHERE name = $1
		AND key = $2`,
		x.name,
		k.Bytes(),
	)

	var v []byte
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot scan index record: %w", err)
	}

	return v, nil
}

func (x *idx) Has(ctx context.Context, k *value.Value) (bool, error) {
	row := x.db.QueryRowContext(
		ctx,
		`SELECT COUNT(key) != 0
		FROM valuekit.index_record
		WHERE name = $1
		AND key = $2`,
		x.name,
		k.Bytes(),
	)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("cannot scan index record: %w", err)
	}

	return exists, nil
}

func (x *idx) Set(ctx context.Context, k *value.Value, v []byte) error {
	if len(v) == 0 {
		if _, err := x.db.ExecContext(
			ctx,
			`DELETE FROM valuekit.index_record
			WHERE name = $1
			AND key = $2`,
			x.name,
			k.Bytes(),
		); err != nil {
			return fmt.Errorf("cannot delete index record: %w", err)
		}

		return nil
	}

	if _, err := x.db.ExecContext(
		ctx,
		`INSERT INTO valuekit.index_record (
			name,
			key,
			record
		) VALUES (
			$1, $2, $3
		) ON CONFLICT (name, key) DO UPDATE SET
			record = excluded.record`,
		x.name,
		k.Bytes(),
		v,
	); err != nil {
		return fmt.Errorf("cannot upsert index record: %w", err)
	}

	return nil
}

func (x *idx) Range(ctx context.Context, fn index.BinaryRangeFunc) error {
	rows, err := x.db.QueryContext(
		ctx,
		`SELECT key, record
		FROM valuekit.index_record
		WHERE name = $1
		ORDER BY key`,
		x.name,
	)
	if err != nil {
		return fmt.Errorf("cannot query index records: %w", err)
	}

	return x.scan(ctx, rows, fn)
}

func (x *idx) RangePrefix(ctx context.Context, p *value.Value, fn index.BinaryRangeFunc) error {
	var (
		rows  *sql.Rows
		err   error
		lower = p.Bytes()
	)

	if upper := upperBound(lower); upper != nil {
		rows, err = x.db.QueryContext(
			ctx,
			`SELECT key, record
			FROM valuekit.index_record
			WHERE name = $1
			AND key >= $2
			AND key < $3
			ORDER BY key`,
			x.name,
			lower,
			upper,
		)
	} else {
		rows, err = x.db.QueryContext(
			ctx,
			`SELECT key, record
			FROM valuekit.index_record
			WHERE name = $1
			AND key >= $2
			ORDER BY key`,
			x.name,
			lower,
		)
	}
	if err != nil {
		return fmt.Errorf("cannot query index records: %w", err)
	}

	return x.scan(ctx, rows, fn)
}

// scan invokes fn for each row in rows, then closes it.
func (x *idx) scan(ctx context.Context, rows *sql.Rows, fn index.BinaryRangeFunc) error {
	defer rows.Close()

	for rows.Next() {
		var kb, v []byte
		if err := rows.Scan(&kb, &v); err != nil {
			return fmt.Errorf("cannot scan index record: %w", err)
		}

		k, err := value.New(kb)
		if err != nil {
			return err
		}

		ok, err := fn(ctx, k, v)
		if !ok || err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("cannot range over index records: %w", err)
	}

	return nil
}

func (x *idx) Close() error {
	return nil
}

// upperBound returns the smallest key that is greater than every key
// beginning with p, or nil if no such key exists.
func upperBound(p []byte) []byte {
	u := bytes.Clone(p)

	for i := len(u) - 1; i >= 0; i-- {
		if u[i] < 0xFF {
			u[i]++
			return u[:i+1]
		}
	}

	return nil
}
