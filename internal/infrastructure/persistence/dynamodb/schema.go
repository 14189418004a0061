package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
)

// TableAPI is the subset of the DynamoDB client needed to provision the table.
type TableAPI interface {
	CreateTable(ctx context.Context, params *awsdynamodb.CreateTableInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *awsdynamodb.DescribeTableInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.DescribeTableOutput, error)
}

// TableDefinition describes the single table: PK/SK plus GSI1..GSI3, all
// string keyed, all projecting every attribute, billed on demand.
func TableDefinition(tableName string) *awsdynamodb.CreateTableInput {
	attrs := []string{
		persistence.AttrPK, persistence.AttrSK,
		persistence.AttrGSI1PK, persistence.AttrGSI1SK,
		persistence.AttrGSI2PK, persistence.AttrGSI2SK,
		persistence.AttrGSI3PK, persistence.AttrGSI3SK,
	}
	definitions := make([]types.AttributeDefinition, 0, len(attrs))
	for _, name := range attrs {
		definitions = append(definitions, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}

	indexes := make([]types.GlobalSecondaryIndex, 0, 3)
	for _, index := range []persistence.Index{persistence.GSI1, persistence.GSI2, persistence.GSI3} {
		pk, sk := index.KeyAttributes()
		indexes = append(indexes, types.GlobalSecondaryIndex{
			IndexName: aws.String(string(index)),
			KeySchema: keySchema(pk, sk),
			Projection: &types.Projection{
				ProjectionType: types.ProjectionTypeAll,
			},
		})
	}

	return &awsdynamodb.CreateTableInput{
		TableName:              aws.String(tableName),
		AttributeDefinitions:   definitions,
		KeySchema:              keySchema(persistence.AttrPK, persistence.AttrSK),
		GlobalSecondaryIndexes: indexes,
		BillingMode:            types.BillingModePayPerRequest,
	}
}

func keySchema(pk, sk string) []types.KeySchemaElement {
	return []types.KeySchemaElement{
		{AttributeName: aws.String(pk), KeyType: types.KeyTypeHash},
		{AttributeName: aws.String(sk), KeyType: types.KeyTypeRange},
	}
}

// EnsureTable creates the table unless it already exists and waits up to
// wait for it to become active. It reports whether the table was created.
func EnsureTable(ctx context.Context, client TableAPI, tableName string, wait time.Duration, logger *zap.Logger) (bool, error) {
	logger = named(logger, "schema")

	_, err := client.CreateTable(ctx, TableDefinition(tableName))
	created := true
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return false, apperrors.FromDynamoDBError("CreateTable", err)
		}
		created = false
		logger.Info("table already exists", zap.String("table", tableName))
	}

	waiter := awsdynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &awsdynamodb.DescribeTableInput{TableName: aws.String(tableName)}, wait); err != nil {
		return created, apperrors.NewStorage("wait for table", err)
	}

	if created {
		logger.Info("table created", zap.String("table", tableName))
	}
	return created, nil
}
