package dynamodb

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/samber/lo"

	"github-ddb-backend/internal/infrastructure/persistence"
)

const (
	attrEntityType = "EntityType"
	attrCreatedAt  = "CreatedAt"
	attrUpdatedAt  = "UpdatedAt"
)

// BaseItem holds the attributes every entity item carries.
type BaseItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK     string `dynamodbav:"GSI1SK,omitempty"`
	GSI2PK     string `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK     string `dynamodbav:"GSI2SK,omitempty"`
	GSI3PK     string `dynamodbav:"GSI3PK,omitempty"`
	GSI3SK     string `dynamodbav:"GSI3SK,omitempty"`
	EntityType string `dynamodbav:"EntityType"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func newBaseItem(itemType string, key persistence.Key, createdAt, updatedAt time.Time) BaseItem {
	return BaseItem{
		PK:         key.PartitionKey,
		SK:         key.SortKey,
		EntityType: itemType,
		CreatedAt:  encodeTime(createdAt),
		UpdatedAt:  encodeTime(updatedAt),
	}
}

// timestamps decodes CreatedAt and UpdatedAt.
func (a BaseItem) timestamps() (created, updated time.Time, err error) {
	if created, err = decodeTime(attrCreatedAt, a.CreatedAt); err != nil {
		return
	}
	updated, err = decodeTime(attrUpdatedAt, a.UpdatedAt)
	return
}

// StringAttr creates a DynamoDB string attribute value.
func StringAttr(value string) *types.AttributeValueMemberS {
	return &types.AttributeValueMemberS{Value: value}
}

// ExtractStringValue returns the value of a string attribute, or "".
func ExtractStringValue(attr types.AttributeValue) string {
	if s, ok := attr.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func itemType(item persistence.Item) string {
	return ExtractStringValue(item[attrEntityType])
}

// encodeTime renders timestamps as UTC RFC 3339 with nanoseconds.
func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t.UTC(), nil
}

// nilIfEmpty stores nothing for an empty list and decodes nothing back.
func nilIfEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}

// normalizeNames drops blanks and duplicates, keeping first-seen order.
func normalizeNames(values []string) []string {
	return nilIfEmpty(lo.Uniq(lo.Compact(values)))
}
