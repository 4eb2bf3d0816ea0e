package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/storefront/internal/domain/order"
)

// DynamoOrderStore stores order documents in DynamoDB keyed by reference,
// with a GSI on user_id for per-user listing.
type DynamoOrderStore struct {
	client    *dynamodb.Client
	tableName string
	userIndex string
}

// dynamoOrder represents the DynamoDB item structure
type dynamoOrder struct {
	Reference string `dynamodbav:"reference"`
	UserID    string `dynamodbav:"user_id"`
	Status    string `dynamodbav:"status"`
	Data      string `dynamodbav:"data"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func NewDynamoOrderStore(client *dynamodb.Client, tableName, userIndex string) *DynamoOrderStore {
	return &DynamoOrderStore{client: client, tableName: tableName, userIndex: userIndex}
}

// Put writes the order with create-or-replace semantics: a second write with
// the same reference overwrites the first.
func (os *DynamoOrderStore) Put(ctx context.Context, o *order.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return repoErr("put order", err)
	}

	doc := dynamoOrder{
		Reference: o.Reference,
		UserID:    o.UserID,
		Status:    string(o.Status),
		Data:      string(data),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	av, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return repoErr("put order", fmt.Errorf("failed to marshal order: %w", err))
	}

	_, err = os.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(os.tableName),
		Item:      av,
	})
	if err != nil {
		return repoErr("put order", err)
	}
	return nil
}

func (os *DynamoOrderStore) UpdateStatus(ctx context.Context, reference string, status order.Status, updatedAt string) error {
	// The order payload carries its own status copy; rewrite both.
	o, err := os.GetByReference(ctx, reference)
	if err != nil {
		return err
	}
	if o == nil {
		return repoErr("update status", order.ErrOrderNotFound)
	}
	o.Status = status
	o.UpdatedAt = updatedAt

	data, err := json.Marshal(o)
	if err != nil {
		return repoErr("update status", err)
	}

	_, err = os.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(os.tableName),
		Key: map[string]types.AttributeValue{
			"reference": &types.AttributeValueMemberS{Value: reference},
		},
		UpdateExpression: aws.String("SET #s = :status, #d = :data, updated_at = :updated"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
			"#d": "data",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":  &types.AttributeValueMemberS{Value: string(status)},
			":data":    &types.AttributeValueMemberS{Value: string(data)},
			":updated": &types.AttributeValueMemberS{Value: updatedAt},
		},
	})
	if err != nil {
		return repoErr("update status", err)
	}
	return nil
}

func (os *DynamoOrderStore) GetByReference(ctx context.Context, reference string) (*order.Order, error) {
	result, err := os.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(os.tableName),
		Key: map[string]types.AttributeValue{
			"reference": &types.AttributeValueMemberS{Value: reference},
		},
	})
	if err != nil {
		return nil, repoErr("get order", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var doc dynamoOrder
	if err := attributevalue.UnmarshalMap(result.Item, &doc); err != nil {
		return nil, repoErr("get order", err)
	}
	return decodeOrder(doc.Data)
}

func (os *DynamoOrderStore) GetByUser(ctx context.Context, userID string) ([]order.Order, error) {
	result, err := os.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(os.tableName),
		IndexName:              aws.String(os.userIndex),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, repoErr("list orders", err)
	}

	orders := make([]order.Order, 0, len(result.Items))
	for _, item := range result.Items {
		var doc dynamoOrder
		if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
			return nil, repoErr("list orders", err)
		}
		o, err := decodeOrder(doc.Data)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func decodeOrder(data string) (*order.Order, error) {
	var o order.Order
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return nil, repoErr("decode order", fmt.Errorf("corrupt order payload: %w", err))
	}
	return &o, nil
}
