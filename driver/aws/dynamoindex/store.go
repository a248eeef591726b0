// Package dynamoindex provides an implementation of [index.BinaryStore] that
// persists indexes in a DynamoDB table.
//
// All indexes share a single table. The index name forms the partition key
// and the record key forms the binary sort key, so a DynamoDB query over a
// partition yields records in exactly the order defined by [value.Compare].
//
// DynamoDB does not allow empty binary sort keys, so keys must not be empty.
package dynamoindex

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dogmatiq/valuekit/index"
	"github.com/dogmatiq/valuekit/internal/syncx"
)

// store is an implementation of [index.BinaryStore] that persists to a
// DynamoDB table.
type store struct {
	Client    *dynamodb.Client
	Table     string
	OnRequest func(any) []func(*dynamodb.Options)

	createTableOnce syncx.SucceedOnce
}

// NewBinaryStore returns a new [index.BinaryStore] that uses the given
// DynamoDB client to store records in the given table.
//
// The table is created if it does not already exist.
func NewBinaryStore(
	client *dynamodb.Client,
	table string,
	options ...Option,
) index.BinaryStore {
	if table == "" {
		panic("table name must not be empty")
	}

	s := &store{
		Client: client,
		Table:  table,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Option is a functional option that changes the behavior of
// [NewBinaryStore].
type Option func(*store)

// WithRequestHook is an [Option] that configures fn as a pre-request hook.
//
// Before each DynamoDB API request, fn is passed a pointer to the input
// struct, e.g. [dynamodb.GetItemInput], which it may modify in-place. It may
// be called with any DynamoDB request type. The types of requests used may
// change in any version without notice.
//
// Any functions returned by fn are applied to the request's options before
// the request is sent.
func WithRequestHook(fn func(any) []func(*dynamodb.Options)) Option {
	return func(s *store) {
		s.OnRequest = fn
	}
}

// Open returns the index with the given name.
func (s *store) Open(ctx context.Context, name string) (index.BinaryIndex, error) {
	if err := s.createTableOnce.Do(ctx, s.createTable); err != nil {
		return nil, err
	}

	x := &idx{
		Client:    s.Client,
		OnRequest: s.OnRequest,
	}

	x.attr.Index.Value = name
	x.prepareRequests(s.Table)

	return x, nil
}
