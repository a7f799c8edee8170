package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// QueryIndexName is the GSI projecting a deferred query id to its
// subscribed connection ids, mirroring the teacher's (2lar-b2/backend2)
// cmd/ws-connect GSI1 "lookup connections by user" shape, retargeted
// from user subscriptions to query subscriptions (interfaces/ws.Pusher
// pushes "query ready," not "user mentioned").
const QueryIndexName = "QueryIndex"

// connectionItem is one subscribed WebSocket connection.
type connectionItem struct {
	PK           string `dynamodbav:"PK"` // "CONNECTION#<id>"
	SK           string `dynamodbav:"SK"` // "METADATA"
	ConnectionID string `dynamodbav:"ConnectionID"`
	QueryID      string `dynamodbav:"QueryID"`
	ConnectedAt  string `dynamodbav:"ConnectedAt"`
	TTL          int64  `dynamodbav:"TTL"`
}

// ConnectionStore implements interfaces/ws.ConnectionStore over a
// DynamoDB table: one item per connection, keyed by connection id, with
// a GSI on QueryID so NotifyReady's lookup is a single Query call.
type ConnectionStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewConnectionStore creates a ConnectionStore.
func NewConnectionStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *ConnectionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionStore{client: client, tableName: tableName, logger: logger}
}

func connectionPK(id string) string { return "CONNECTION#" + id }

// Subscribe records that connectionID is waiting on queryID, with a
// 24-hour TTL matching the teacher's connection-record lifetime.
func (s *ConnectionStore) Subscribe(ctx context.Context, connectionID, queryID string) error {
	item, err := attributevalue.MarshalMap(connectionItem{
		PK: connectionPK(connectionID), SK: "METADATA",
		ConnectionID: connectionID,
		QueryID:      queryID,
		ConnectedAt:  time.Now().UTC().Format(time.RFC3339),
		TTL:          time.Now().Add(24 * time.Hour).Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal connection item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(s.tableName), Item: item})
	return err
}

// ConnectionsFor resolves every connection id currently subscribed to
// queryID via the QueryIndex GSI.
func (s *ConnectionStore) ConnectionsFor(ctx context.Context, queryID string) ([]string, error) {
	keyCond := expression.Key("QueryID").Equal(expression.Value(queryID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build query expression: %w", err)
	}
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(QueryIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		s.logger.Error("connection lookup by query failed", zap.String("query_id", queryID), zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(out.Items))
	for _, rawItem := range out.Items {
		var it connectionItem
		if err := attributevalue.UnmarshalMap(rawItem, &it); err != nil {
			continue
		}
		ids = append(ids, it.ConnectionID)
	}
	return ids, nil
}

// RemoveConnection deletes a stale connection record, called when
// interfaces/ws.Pusher observes a GoneException from API Gateway.
func (s *ConnectionStore) RemoveConnection(ctx context.Context, connectionID string) error {
	key, err := attributevalue.MarshalMap(map[string]any{"PK": connectionPK(connectionID), "SK": "METADATA"})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: aws.String(s.tableName), Key: key})
	return err
}
