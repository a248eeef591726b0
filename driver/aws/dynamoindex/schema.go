package dynamoindex

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/valuekit/driver/aws/internal/dynamox"
)

var (
	// indexAttr is the name of the attribute that stores the index name on
	// each item. Together with [keyAttr], it forms the primary key of the
	// table.
	indexAttr = "N"

	// keyAttr is the name of the attribute that stores the record's key on
	// each item. Together with [indexAttr], it forms the primary key of the
	// table.
	keyAttr = "K"

	// recordAttr is the name of the attribute that stores the record data on
	// each item.
	recordAttr = "R"

	// nonExistentAttr is the name of an attribute that does not exist on any
	// item. It is used to test for the existence of an item without fetching
	// unnecessary data.
	nonExistentAttr = "X"
)

// createTable creates the DynamoDB table if it does not already exist.
func (s *store) createTable(ctx context.Context) error {
	return dynamox.CreateTableIfNotExists(
		ctx,
		s.Client,
		s.Table,
		s.OnRequest,
		dynamox.KeyAttr{
			Name:    &indexAttr,
			Type:    types.ScalarAttributeTypeS,
			KeyType: types.KeyTypeHash,
		},
		dynamox.KeyAttr{
			Name:    &keyAttr,
			Type:    types.ScalarAttributeTypeB,
			KeyType: types.KeyTypeRange,
		},
	)
}

func (x *idx) prepareRequests(table string) {
	key := map[string]types.AttributeValue{
		indexAttr: &x.attr.Index,
		keyAttr:   &x.attr.Key,
	}

	// Get fetches the record associated with x.attr.Key.
	x.request.Get = dynamodb.GetItemInput{
		TableName:            &table,
		Key:                  key,
		ProjectionExpression: aws.String(`#R`),
		ExpressionAttributeNames: map[string]string{
			"#R": recordAttr,
		},
	}

	// Has requests [nonExistentAttr] for the item at x.attr.Key to check if
	// the item exists at all.
	x.request.Has = dynamodb.GetItemInput{
		TableName:            &table,
		Key:                  key,
		ProjectionExpression: &nonExistentAttr,
	}

	// Range fetches all records in the index, in sort key order.
	x.request.Range = dynamodb.QueryInput{
		TableName:              &table,
		KeyConditionExpression: aws.String(`#N = :N`),
		ProjectionExpression:   aws.String(`#K, #R`),
		ExpressionAttributeNames: map[string]string{
			"#N": indexAttr,
			"#K": keyAttr,
			"#R": recordAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":N": &x.attr.Index,
		},
	}

	// RangePrefix fetches the records whose keys begin with x.attr.Prefix,
	// in sort key order.
	x.request.RangePrefix = dynamodb.QueryInput{
		TableName:              &table,
		KeyConditionExpression: aws.String(`#N = :N AND begins_with(#K, :P)`),
		ProjectionExpression:   aws.String(`#K, #R`),
		ExpressionAttributeNames: map[string]string{
			"#N": indexAttr,
			"#K": keyAttr,
			"#R": recordAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":N": &x.attr.Index,
			":P": &x.attr.Prefix,
		},
	}

	// Put sets the record associated with x.attr.Key to x.attr.Record.
	x.request.Put = dynamodb.PutItemInput{
		TableName: &table,
		Item: map[string]types.AttributeValue{
			indexAttr:  &x.attr.Index,
			keyAttr:    &x.attr.Key,
			recordAttr: &x.attr.Record,
		},
	}

	// Delete removes the item at x.attr.Key.
	x.request.Delete = dynamodb.DeleteItemInput{
		TableName: &table,
		Key:       key,
	}
}
