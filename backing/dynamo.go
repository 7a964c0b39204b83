package backing

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mplewis/layerkv"
)

// DefaultDynamoKey is the partition key attribute used when DynamoArgs.KeyAttr is empty.
const DefaultDynamoKey = "id"

// Document is a DynamoDB item without its key attribute.
type Document = map[string]types.AttributeValue

// DynamoAPI is the subset of *dynamodb.Client the Dynamo backing uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	dynamodb.ScanAPIClient
}

// Dynamo stores documents in a DynamoDB table whose partition key is a
// single string attribute. The key attribute is added on Set and stripped on
// Get, so documents round-trip exactly.
type Dynamo struct {
	table   string
	keyAttr string
	client  DynamoAPI
	context context.Context
}

// DynamoArgs are the arguments for creating a new Dynamo backing.
type DynamoArgs struct {
	Table   string          // Required. The table name.
	KeyAttr string          // Optional. The string partition key attribute. Defaults to DefaultDynamoKey.
	Client  DynamoAPI       // Optional. If not provided, a client is configured from your environment.
	Context context.Context // Optional. Defaults to context.Background().
}

// NewDynamo creates a new backing which stores documents in DynamoDB.
func NewDynamo(args DynamoArgs) (*Dynamo, error) {
	if args.Table == "" {
		return nil, errors.New("dynamo backing: table is required")
	}
	if args.KeyAttr == "" {
		args.KeyAttr = DefaultDynamoKey
	}
	if args.Context == nil {
		args.Context = context.Background()
	}
	if args.Client == nil {
		cfg, err := config.LoadDefaultConfig(args.Context)
		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}
		args.Client = dynamodb.NewFromConfig(cfg)
	}
	logger.Debug("dynamo backing", "table", args.Table, "key", args.KeyAttr)
	return &Dynamo{
		table:   args.Table,
		keyAttr: args.KeyAttr,
		client:  args.Client,
		context: args.Context,
	}, nil
}

func (d *Dynamo) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		d.keyAttr: &types.AttributeValueMemberS{Value: id},
	}
}

// Get returns the document stored at id with a strongly consistent read.
func (d *Dynamo) Get(id string) (Document, error) {
	out, err := d.client.GetItem(d.context, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            d.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, layerkv.NotFound(id)
	}
	doc := maps.Clone(out.Item)
	delete(doc, d.keyAttr)
	return doc, nil
}

// Set puts doc at id, replacing the whole item. doc must not carry the key
// attribute itself, since Get strips it.
func (d *Dynamo) Set(id string, doc Document) error {
	if id == "" {
		return layerkv.InvalidKey(id, "dynamodb keys must not be empty")
	}
	if _, ok := doc[d.keyAttr]; ok {
		return fmt.Errorf("%w: document for %s has an attribute named after the key %q", layerkv.ErrSerialization, id, d.keyAttr)
	}
	item := maps.Clone(doc)
	if item == nil {
		item = Document{}
	}
	item[d.keyAttr] = &types.AttributeValueMemberS{Value: id}
	_, err := d.client.PutItem(d.context, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", id, err)
	}
	return nil
}

// Delete removes id, conditioned on the item existing.
func (d *Dynamo) Delete(id string) error {
	_, err := d.client.DeleteItem(d.context, &dynamodb.DeleteItemInput{
		TableName:                aws.String(d.table),
		Key:                      d.key(id),
		ConditionExpression:      aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames: map[string]string{"#k": d.keyAttr},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return layerkv.NotFound(id)
	}
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	return nil
}

// Keys scans the table projecting only the key attribute. Items whose key
// is not a string are skipped.
func (d *Dynamo) Keys() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
			TableName:                aws.String(d.table),
			ProjectionExpression:     aws.String("#k"),
			ExpressionAttributeNames: map[string]string{"#k": d.keyAttr},
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(d.context)
			if err != nil {
				yield("", fmt.Errorf("scanning %s: %w", d.table, err))
				return
			}
			for _, item := range page.Items {
				s, ok := item[d.keyAttr].(*types.AttributeValueMemberS)
				if !ok {
					logger.Debug("skipping item without string key", "table", d.table)
					continue
				}
				if !yield(s.Value, nil) {
					return
				}
			}
		}
	}
}

// Contains fetches only the key attribute of id.
func (d *Dynamo) Contains(id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	out, err := d.client.GetItem(d.context, &dynamodb.GetItemInput{
		TableName:                aws.String(d.table),
		Key:                      d.key(id),
		ProjectionExpression:     aws.String("#k"),
		ExpressionAttributeNames: map[string]string{"#k": d.keyAttr},
	})
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", id, err)
	}
	return out.Item != nil, nil
}

// Count runs a COUNT scan, which returns no items.
func (d *Dynamo) Count() (int, error) {
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName: aws.String(d.table),
		Select:    types.SelectCount,
	})
	n := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(d.context)
		if err != nil {
			return 0, fmt.Errorf("counting %s: %w", d.table, err)
		}
		n += int(page.Count)
	}
	return n, nil
}
