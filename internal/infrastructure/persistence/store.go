// Package persistence defines the key-value store contract the repositories
// are written against, together with its DynamoDB implementation and the
// decorators wrapped around it.
//
// The contract is deliberately small: point reads, conditional puts and
// updates, unconditional deletes, an atomic counter increment and a
// single-page indexed range query. Every safety property of the data-access
// layer (unique sequence numbers, no duplicate relations) reduces to the
// conditional-write and atomic-increment guarantees of the implementation.
package persistence

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names of the single table.
const (
	AttrPK     = "PK"
	AttrSK     = "SK"
	AttrGSI1PK = "GSI1PK"
	AttrGSI1SK = "GSI1SK"
	AttrGSI2PK = "GSI2PK"
	AttrGSI2SK = "GSI2SK"
	AttrGSI3PK = "GSI3PK"
	AttrGSI3SK = "GSI3SK"
)

// ErrConditionFailed is returned by Put and Update when the write condition
// did not hold. Repositories translate it; it never reaches services.
var ErrConditionFailed = errors.New("persistence: condition check failed")

// Item is a stored item in DynamoDB attribute-value form.
type Item = map[string]types.AttributeValue

// Key identifies an item in the base table.
type Key struct {
	PartitionKey string
	SortKey      string
}

// Condition is the precondition of a write.
type Condition int

const (
	// NoCondition writes unconditionally.
	NoCondition Condition = iota
	// IfNotExists succeeds only when no item has the key.
	IfNotExists
	// IfExists succeeds only when an item with the key is present.
	IfExists
)

func (c Condition) String() string {
	switch c {
	case IfNotExists:
		return "if_not_exists"
	case IfExists:
		return "if_exists"
	default:
		return "none"
	}
}

// Index names a table index. The zero value is the base table.
type Index string

const (
	PrimaryIndex Index = ""
	GSI1         Index = "GSI1"
	GSI2         Index = "GSI2"
	GSI3         Index = "GSI3"
)

// KeyAttributes returns the partition and sort key attribute names of the index.
func (i Index) KeyAttributes() (pk, sk string) {
	switch i {
	case GSI1:
		return AttrGSI1PK, AttrGSI1SK
	case GSI2:
		return AttrGSI2PK, AttrGSI2SK
	case GSI3:
		return AttrGSI3PK, AttrGSI3SK
	default:
		return AttrPK, AttrSK
	}
}

// Query is a single-page range query over one partition of an index.
type Query struct {
	Index         Index
	PartitionKey  string
	SortKeyPrefix string            // optional begins_with on the index sort key
	Limit         int32             // page size, 0 means store default
	StartKey      map[string]string // opaque continuation from a previous page
	Descending    bool
}

// QueryResult is one page of a query. LastEvaluated is nil on the last page.
type QueryResult struct {
	Items         []Item
	LastEvaluated map[string]string
}

// Store abstracts the single table. Implementations must make Put/Update
// conditions and Increment atomic with respect to concurrent callers.
type Store interface {
	// Get returns the item at key, or nil when absent.
	Get(ctx context.Context, key Key) (Item, error)
	// Put writes item, returning ErrConditionFailed if cond does not hold.
	Put(ctx context.Context, item Item, cond Condition) error
	// Update sets the given attributes and returns the item after the write.
	Update(ctx context.Context, key Key, changes map[string]any, cond Condition) (Item, error)
	// Delete removes the item at key. Deleting an absent item is not an error.
	Delete(ctx context.Context, key Key) error
	// Increment atomically adds delta to a numeric attribute, treating a
	// missing item or attribute as zero, and returns the new value.
	Increment(ctx context.Context, key Key, attribute string, delta int64) (int64, error)
	// Query returns one page of items from an index partition.
	Query(ctx context.Context, q Query) (*QueryResult, error)
	// HealthCheck verifies the table is reachable.
	HealthCheck(ctx context.Context) error
}
