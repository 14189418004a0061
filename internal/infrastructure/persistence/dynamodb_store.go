package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	apperrors "github-ddb-backend/internal/errors"
)

// DynamoDBAPI is the subset of the DynamoDB client used by DynamoDBStore.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// StoreConfig holds configuration for the DynamoDB store.
type StoreConfig struct {
	TableName      string
	Timeout        time.Duration // per-call deadline, 0 disables
	ConsistentRead bool          // applies to base-table reads only
}

// DynamoDBStore implements Store on a single DynamoDB table.
type DynamoDBStore struct {
	client DynamoDBAPI
	config StoreConfig
	logger *zap.Logger
}

// NewDynamoDBStore creates a new DynamoDB store implementation.
func NewDynamoDBStore(client DynamoDBAPI, config StoreConfig, logger *zap.Logger) *DynamoDBStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DynamoDBStore{
		client: client,
		config: config,
		logger: logger.Named("dynamodb_store"),
	}
}

func (s *DynamoDBStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}

func dynamoKey(key Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: key.PartitionKey},
		AttrSK: &types.AttributeValueMemberS{Value: key.SortKey},
	}
}

func conditionExpression(cond Condition) (expression.ConditionBuilder, bool) {
	switch cond {
	case IfNotExists:
		return expression.AttributeNotExists(expression.Name(AttrPK)), true
	case IfExists:
		return expression.AttributeExists(expression.Name(AttrPK)), true
	default:
		return expression.ConditionBuilder{}, false
	}
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// Get retrieves a single item by key.
func (s *DynamoDBStore) Get(ctx context.Context, key Key) (Item, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.config.TableName),
		Key:            dynamoKey(key),
		ConsistentRead: aws.Bool(s.config.ConsistentRead),
	})
	if err != nil {
		return nil, apperrors.FromDynamoDBError("GetItem", err)
	}
	if len(result.Item) == 0 {
		return nil, nil
	}
	return result.Item, nil
}

// Put stores an item, honouring cond.
func (s *DynamoDBStore) Put(ctx context.Context, item Item, cond Condition) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.config.TableName),
		Item:      item,
	}

	if c, ok := conditionExpression(cond); ok {
		expr, err := expression.NewBuilder().WithCondition(c).Build()
		if err != nil {
			return apperrors.NewStorage("PutItem", fmt.Errorf("build condition: %w", err))
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		if isConditionFailure(err) {
			return ErrConditionFailed
		}
		return apperrors.FromDynamoDBError("PutItem", err)
	}
	return nil
}

// Update sets the given attributes and returns the full item after the write.
func (s *DynamoDBStore) Update(ctx context.Context, key Key, changes map[string]any, cond Condition) (Item, error) {
	if len(changes) == 0 {
		return nil, apperrors.NewStorage("UpdateItem", errors.New("no attributes to update"))
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// Sorted for a stable expression, which keeps request logs comparable.
	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)

	var update expression.UpdateBuilder
	for i, name := range names {
		if i == 0 {
			update = expression.Set(expression.Name(name), expression.Value(changes[name]))
			continue
		}
		update = update.Set(expression.Name(name), expression.Value(changes[name]))
	}

	builder := expression.NewBuilder().WithUpdate(update)
	if c, ok := conditionExpression(cond); ok {
		builder = builder.WithCondition(c)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, apperrors.NewStorage("UpdateItem", fmt.Errorf("build update: %w", err))
	}

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.TableName),
		Key:                       dynamoKey(key),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailure(err) {
			return nil, ErrConditionFailed
		}
		return nil, apperrors.FromDynamoDBError("UpdateItem", err)
	}
	return result.Attributes, nil
}

// Delete removes an item by key.
func (s *DynamoDBStore) Delete(ctx context.Context, key Key) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       dynamoKey(key),
	})
	if err != nil {
		return apperrors.FromDynamoDBError("DeleteItem", err)
	}
	return nil
}

// Increment uses UpdateItem ADD, which creates the item and attribute at
// zero when they are missing.
func (s *DynamoDBStore) Increment(ctx context.Context, key Key, attribute string, delta int64) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	expr, err := expression.NewBuilder().
		WithUpdate(expression.Add(expression.Name(attribute), expression.Value(delta))).
		Build()
	if err != nil {
		return 0, apperrors.NewStorage("UpdateItem", fmt.Errorf("build increment: %w", err))
	}

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.TableName),
		Key:                       dynamoKey(key),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, apperrors.FromDynamoDBError("UpdateItem", err)
	}

	n, ok := result.Attributes[attribute].(*types.AttributeValueMemberN)
	if !ok {
		return 0, apperrors.NewStorage("UpdateItem", fmt.Errorf("counter attribute %q missing from response", attribute))
	}
	value, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, apperrors.NewStorage("UpdateItem", fmt.Errorf("counter attribute %q: %w", attribute, err))
	}
	return value, nil
}

// Query performs a single-page query against the base table or a GSI.
func (s *DynamoDBStore) Query(ctx context.Context, q Query) (*QueryResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pkAttr, skAttr := q.Index.KeyAttributes()
	keyCond := expression.Key(pkAttr).Equal(expression.Value(q.PartitionKey))
	if q.SortKeyPrefix != "" {
		keyCond = keyCond.And(expression.Key(skAttr).BeginsWith(q.SortKeyPrefix))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.NewStorage("Query", fmt.Errorf("build key condition: %w", err))
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         toAttributeKey(q.StartKey),
		ScanIndexForward:          aws.Bool(!q.Descending),
	}
	if q.Index != PrimaryIndex {
		input.IndexName = aws.String(string(q.Index))
	} else {
		input.ConsistentRead = aws.Bool(s.config.ConsistentRead)
	}
	if q.Limit > 0 {
		input.Limit = aws.Int32(q.Limit)
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, apperrors.FromDynamoDBError("Query", err)
	}

	s.logger.Debug("query completed",
		zap.String("index", string(q.Index)),
		zap.String("partition_key", q.PartitionKey),
		zap.Int32("count", result.Count))

	return &QueryResult{
		Items:         result.Items,
		LastEvaluated: fromAttributeKey(result.LastEvaluatedKey),
	}, nil
}

// HealthCheck verifies the table is accessible.
func (s *DynamoDBStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.config.TableName),
	})
	if err != nil {
		return apperrors.FromDynamoDBError("DescribeTable", err)
	}
	return nil
}
