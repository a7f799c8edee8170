// Package dynamodb implements a reference internal/primitive.Store
// backed by DynamoDB.
//
// Grounded on infrastructure/persistence/dynamodb/graph_repository.go
// (teacher repo 2lar-b2/backend2): the same PK/SK single-table item
// shape, attributevalue (un)marshaling, and zap request logging,
// retargeted from a graph/node/edge aggregate to one Primitive per item.
// A GSI on GUID mirrors the teacher's GSI1 ("graph lookups by ID")
// generalized to ReadByGUID.
package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"graphd/internal/pid"
	"graphd/internal/primitive"
)

// GUIDIndexName is the GSI used by ReadByGUID to resolve a GUID to its
// current PID, mirroring the teacher's GSI1 "lookup by ID" index.
const GUIDIndexName = "GUIDIndex"

// Store is a primitive.Store backed by a single DynamoDB table: one item
// per primitive, keyed by PID, with a GSI projecting GUID -> PID.
type Store struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// New creates a Store. logger defaults to a no-op logger if nil.
func New(client *dynamodb.Client, tableName string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, tableName: tableName, logger: logger}
}

// primitiveItem is the DynamoDB item shape for one primitive.
type primitiveItem struct {
	PK string `dynamodbav:"PK"` // "PID#<pid>"
	SK string `dynamodbav:"SK"` // always "PRIMITIVE"

	GUIDDatabaseID uint64 `dynamodbav:"GUIDDatabaseID"`
	GUIDSerial     uint64 `dynamodbav:"GUIDSerial"`

	LeftDB      uint64 `dynamodbav:"LeftDB"`
	LeftSerial  uint64 `dynamodbav:"LeftSerial"`
	RightDB     uint64 `dynamodbav:"RightDB"`
	RightSerial uint64 `dynamodbav:"RightSerial"`
	TypeDB      uint64 `dynamodbav:"TypeDB"`
	TypeSerial  uint64 `dynamodbav:"TypeSerial"`
	ScopeDB     uint64 `dynamodbav:"ScopeDB"`
	ScopeSerial uint64 `dynamodbav:"ScopeSerial"`

	TimestampUnixNano int64 `dynamodbav:"TimestampUnixNano"`
	ValueType         int   `dynamodbav:"ValueType"`
	Name              []byte `dynamodbav:"Name"`
	Value             []byte `dynamodbav:"Value"`

	Generation uint64 `dynamodbav:"Generation"`
	Archival   bool   `dynamodbav:"Archival"`
	Live       bool   `dynamodbav:"Live"`
}

func pidKey(id pid.PID) string { return "PID#" + strconv.FormatUint(uint64(id), 16) }

func toItem(id pid.PID, p primitive.Primitive) primitiveItem {
	it := primitiveItem{
		PK:                pidKey(id),
		SK:                "PRIMITIVE",
		GUIDDatabaseID:    p.GUID.DatabaseID,
		GUIDSerial:        p.GUID.Serial,
		TimestampUnixNano: p.Timestamp.UnixNano(),
		ValueType:         int(p.ValueType),
		Name:              p.Name,
		Value:             p.Value,
		Generation:        p.Generation,
		Archival:          p.Archival,
		Live:              p.Live,
	}
	it.LeftDB, it.LeftSerial = p.Linkages[primitive.Left].DatabaseID, p.Linkages[primitive.Left].Serial
	it.RightDB, it.RightSerial = p.Linkages[primitive.Right].DatabaseID, p.Linkages[primitive.Right].Serial
	it.TypeDB, it.TypeSerial = p.Linkages[primitive.TypeGUID].DatabaseID, p.Linkages[primitive.TypeGUID].Serial
	it.ScopeDB, it.ScopeSerial = p.Linkages[primitive.Scope].DatabaseID, p.Linkages[primitive.Scope].Serial
	return it
}

func fromItem(it primitiveItem) primitive.Primitive {
	p := primitive.Primitive{
		GUID:       pid.GUID{DatabaseID: it.GUIDDatabaseID, Serial: it.GUIDSerial},
		Timestamp:  time.Unix(0, it.TimestampUnixNano).UTC(),
		ValueType:  primitive.ValueType(it.ValueType),
		Name:       it.Name,
		Value:      it.Value,
		Generation: it.Generation,
		Archival:   it.Archival,
		Live:       it.Live,
	}
	p.Linkages[primitive.Left] = pid.GUID{DatabaseID: it.LeftDB, Serial: it.LeftSerial}
	p.Linkages[primitive.Right] = pid.GUID{DatabaseID: it.RightDB, Serial: it.RightSerial}
	p.Linkages[primitive.TypeGUID] = pid.GUID{DatabaseID: it.TypeDB, Serial: it.TypeSerial}
	p.Linkages[primitive.Scope] = pid.GUID{DatabaseID: it.ScopeDB, Serial: it.ScopeSerial}
	return p
}

// Read resolves a PID to its Primitive.
func (s *Store) Read(ctx context.Context, id pid.PID) (primitive.Primitive, bool, error) {
	key, err := attributevalue.MarshalMap(map[string]any{"PK": pidKey(id), "SK": "PRIMITIVE"})
	if err != nil {
		return primitive.Primitive{}, false, fmt.Errorf("marshal key: %w", err)
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(s.tableName), Key: key})
	if err != nil {
		s.logger.Error("primitive store read failed", zap.String("pid", id.String()), zap.Error(err))
		return primitive.Primitive{}, false, err
	}
	if out.Item == nil {
		return primitive.Primitive{}, false, nil
	}
	var it primitiveItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return primitive.Primitive{}, false, fmt.Errorf("unmarshal item: %w", err)
	}
	return fromItem(it), true, nil
}

// ReadByGUID resolves a GUID via the GUID GSI.
func (s *Store) ReadByGUID(ctx context.Context, g pid.GUID) (pid.PID, primitive.Primitive, bool, error) {
	keyCond := expression.Key("GUIDDatabaseID").Equal(expression.Value(g.DatabaseID)).
		And(expression.Key("GUIDSerial").Equal(expression.Value(g.Serial)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return 0, primitive.Primitive{}, false, fmt.Errorf("build query expression: %w", err)
	}
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(GUIDIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		s.logger.Error("primitive store guid lookup failed", zap.String("guid", g.String()), zap.Error(err))
		return 0, primitive.Primitive{}, false, err
	}
	if len(out.Items) == 0 {
		return 0, primitive.Primitive{}, false, nil
	}
	var it primitiveItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return 0, primitive.Primitive{}, false, fmt.Errorf("unmarshal item: %w", err)
	}
	resolvedPID, err := strconv.ParseUint(it.PK[len("PID#"):], 16, 64)
	if err != nil {
		return 0, primitive.Primitive{}, false, fmt.Errorf("parse PK: %w", err)
	}
	return pid.PID(resolvedPID), fromItem(it), true, nil
}

// Write persists a new primitive at the next PID. Callers must hold an
// exclusive xstate ticket; Store does not serialize writes itself.
func (s *Store) Write(ctx context.Context, p primitive.Primitive) (pid.PID, error) {
	maxPID, err := s.MaxPID(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve max pid: %w", err)
	}
	newPID := maxPID + 1

	item, err := attributevalue.MarshalMap(toItem(newPID, p))
	if err != nil {
		return 0, fmt.Errorf("marshal item: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}); err != nil {
		s.logger.Error("primitive store write failed", zap.String("pid", newPID.String()), zap.Error(err))
		return 0, err
	}

	counterItem, err := attributevalue.MarshalMap(map[string]any{
		"PK": "COUNTER#MAXPID", "SK": "COUNTER", "Value": uint64(newPID),
	})
	if err != nil {
		return 0, fmt.Errorf("marshal counter: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName), Item: counterItem,
	}); err != nil {
		s.logger.Warn("primitive store counter update failed", zap.Error(err))
	}

	return newPID, nil
}

// MaxPID returns the highest PID currently assigned.
func (s *Store) MaxPID(ctx context.Context) (pid.PID, error) {
	key, err := attributevalue.MarshalMap(map[string]any{"PK": "COUNTER#MAXPID", "SK": "COUNTER"})
	if err != nil {
		return 0, fmt.Errorf("marshal key: %w", err)
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(s.tableName), Key: key})
	if err != nil {
		return 0, err
	}
	if out.Item == nil {
		return 0, nil
	}
	var counter struct {
		Value uint64 `dynamodbav:"Value"`
	}
	if err := attributevalue.UnmarshalMap(out.Item, &counter); err != nil {
		return 0, fmt.Errorf("unmarshal counter: %w", err)
	}
	return pid.PID(counter.Value), nil
}

var _ primitive.Store = (*Store)(nil)
