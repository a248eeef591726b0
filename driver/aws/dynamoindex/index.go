package dynamoindex

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/valuekit/driver/aws/internal/awsx"
	"github.com/dogmatiq/valuekit/driver/aws/internal/dynamox"
	"github.com/dogmatiq/valuekit/index"
	"github.com/dogmatiq/valuekit/value"
)

// idx is an implementation of [index.BinaryIndex] that stores records in a
// single partition of a DynamoDB table.
type idx struct {
	Client    *dynamodb.Client
	OnRequest func(any) []func(*dynamodb.Options)

	attr struct {
		Index  types.AttributeValueMemberS
		Key    types.AttributeValueMemberB
		Prefix types.AttributeValueMemberB
		Record types.AttributeValueMemberB
	}

	request struct {
		Get         dynamodb.GetItemInput
		Has         dynamodb.GetItemInput
		Range       dynamodb.QueryInput
		RangePrefix dynamodb.QueryInput
		Put         dynamodb.PutItemInput
		Delete      dynamodb.DeleteItemInput
	}
}

func (x *idx) Name() string {
	return x.attr.Index.Value
}

func (x *idx) Get(ctx context.Context, k *value.Value) ([]byte, error) {
	x.attr.Key.Value = k.Bytes()

	out, err := awsx.Do(
		ctx,
		x.Client.GetItem,
		x.OnRequest,
		&x.request.Get,
	)
	if err != nil || out.Item == nil {
		return nil, err
	}

	v, err := dynamox.AttrAs[*types.AttributeValueMemberB](out.Item, recordAttr)
	if err != nil {
		return nil, err
	}

	return v.Value, nil
}

func (x *idx) Has(ctx context.Context, k *value.Value) (bool, error) {
	x.attr.Key.Value = k.Bytes()

	out, err := awsx.Do(
		ctx,
		x.Client.GetItem,
		x.OnRequest,
		&x.request.Has,
	)
	if err != nil {
		return false, err
	}

	return out.Item != nil, nil
}

func (x *idx) Set(ctx context.Context, k *value.Value, v []byte) error {
	x.attr.Key.Value = k.Bytes()

	if len(v) == 0 {
		_, err := awsx.Do(
			ctx,
			x.Client.DeleteItem,
			x.OnRequest,
			&x.request.Delete,
		)
		return err
	}

	x.attr.Record.Value = v

	_, err := awsx.Do(
		ctx,
		x.Client.PutItem,
		x.OnRequest,
		&x.request.Put,
	)
	return err
}

func (x *idx) Range(ctx context.Context, fn index.BinaryRangeFunc) error {
	return x.query(ctx, &x.request.Range, fn)
}

func (x *idx) RangePrefix(ctx context.Context, p *value.Value, fn index.BinaryRangeFunc) error {
	x.attr.Prefix.Value = p.Bytes()
	return x.query(ctx, &x.request.RangePrefix, fn)
}

func (x *idx) query(ctx context.Context, in *dynamodb.QueryInput, fn index.BinaryRangeFunc) error {
	return dynamox.Range(
		ctx,
		x.Client,
		x.OnRequest,
		in,
		func(ctx context.Context, item map[string]types.AttributeValue) (bool, error) {
			kb, err := dynamox.AttrAs[*types.AttributeValueMemberB](item, keyAttr)
			if err != nil {
				return false, err
			}

			rb, err := dynamox.AttrAs[*types.AttributeValueMemberB](item, recordAttr)
			if err != nil {
				return false, err
			}

			k, err := value.New(kb.Value)
			if err != nil {
				return false, err
			}

			return fn(ctx, k, rb.Value)
		},
	)
}

func (x *idx) Close() error {
	return nil
}
