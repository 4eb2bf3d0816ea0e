package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/storefront/internal/domain/cart"
)

// DynamoCartStore stores per-user cart documents in DynamoDB, keyed by
// user_id. Items are kept as one JSON attribute and rewritten wholesale on
// every mutation (last write wins).
type DynamoCartStore struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoCart represents the DynamoDB item structure
type dynamoCart struct {
	UserID    string `dynamodbav:"user_id"`
	Items     string `dynamodbav:"items"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func NewDynamoCartStore(client *dynamodb.Client, tableName string) *DynamoCartStore {
	return &DynamoCartStore{client: client, tableName: tableName}
}

func (cs *DynamoCartStore) Fetch(ctx context.Context, userID string) ([]cart.Item, error) {
	result, err := cs.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(cs.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, repoErr("fetch cart", err)
	}

	if result.Item == nil {
		// Lazily create an empty document.
		if err := cs.write(ctx, userID, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var doc dynamoCart
	if err := attributevalue.UnmarshalMap(result.Item, &doc); err != nil {
		return nil, repoErr("fetch cart", err)
	}

	var items []cart.Item
	if doc.Items != "" {
		if err := json.Unmarshal([]byte(doc.Items), &items); err != nil {
			return nil, repoErr("fetch cart", fmt.Errorf("corrupt items payload: %w", err))
		}
	}
	return items, nil
}

func (cs *DynamoCartStore) UpsertItem(ctx context.Context, userID string, item cart.Item) error {
	items, err := cs.Fetch(ctx, userID)
	if err != nil {
		return err
	}
	return cs.write(ctx, userID, cart.Merge(items, item))
}

func (cs *DynamoCartStore) SetQuantity(ctx context.Context, userID string, key cart.ItemKey, quantity int) error {
	items, err := cs.Fetch(ctx, userID)
	if err != nil {
		return err
	}
	return cs.write(ctx, userID, cart.SetQuantity(items, key, quantity))
}

func (cs *DynamoCartStore) DeleteItem(ctx context.Context, userID string, key cart.ItemKey) error {
	items, err := cs.Fetch(ctx, userID)
	if err != nil {
		return err
	}
	return cs.write(ctx, userID, cart.Remove(items, key))
}

func (cs *DynamoCartStore) Clear(ctx context.Context, userID string) error {
	return cs.write(ctx, userID, nil)
}

func (cs *DynamoCartStore) write(ctx context.Context, userID string, items []cart.Item) error {
	if items == nil {
		items = []cart.Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return repoErr("write cart", err)
	}

	doc := dynamoCart{
		UserID:    userID,
		Items:     string(payload),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	av, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return repoErr("write cart", fmt.Errorf("failed to marshal cart: %w", err))
	}

	_, err = cs.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(cs.tableName),
		Item:      av,
	})
	if err != nil {
		return repoErr("write cart", err)
	}
	return nil
}
