// Package memory provides an in-process persistence.Store with the same
// conditional-write, atomic-increment and index semantics as the DynamoDB
// table. It backs repository tests and local runs without a table.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
)

// DefaultPageSize caps a query page when the caller sets no limit, mimicking
// the size-bounded pages of the real table.
const DefaultPageSize = 1000

// Store is a mutex-guarded map of items keyed by PK and SK.
type Store struct {
	mu    sync.RWMutex
	items map[persistence.Key]persistence.Item

	// PageSize overrides DefaultPageSize for queries without a limit.
	PageSize int32
}

var _ persistence.Store = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{items: make(map[persistence.Key]persistence.Item)}
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func copyItem(item persistence.Item) persistence.Item {
	out := make(persistence.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func stringAttr(item persistence.Item, name string) (string, bool) {
	s, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func itemKey(item persistence.Item) (persistence.Key, error) {
	pk, ok := stringAttr(item, persistence.AttrPK)
	if !ok || pk == "" {
		return persistence.Key{}, apperrors.NewStorage("PutItem", fmt.Errorf("item has no string %s", persistence.AttrPK))
	}
	sk, ok := stringAttr(item, persistence.AttrSK)
	if !ok || sk == "" {
		return persistence.Key{}, apperrors.NewStorage("PutItem", fmt.Errorf("item has no string %s", persistence.AttrSK))
	}
	return persistence.Key{PartitionKey: pk, SortKey: sk}, nil
}

func checkCondition(cond persistence.Condition, exists bool) error {
	switch {
	case cond == persistence.IfNotExists && exists:
		return persistence.ErrConditionFailed
	case cond == persistence.IfExists && !exists:
		return persistence.ErrConditionFailed
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key persistence.Key) (persistence.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTransientStorage("GetItem", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	return copyItem(item), nil
}

func (s *Store) Put(ctx context.Context, item persistence.Item, cond persistence.Condition) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewTransientStorage("PutItem", err)
	}
	key, err := itemKey(item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.items[key]
	if err := checkCondition(cond, exists); err != nil {
		return err
	}
	s.items[key] = copyItem(item)
	return nil
}

func (s *Store) Update(ctx context.Context, key persistence.Key, changes map[string]any, cond persistence.Condition) (persistence.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTransientStorage("UpdateItem", err)
	}
	if len(changes) == 0 {
		return nil, apperrors.NewStorage("UpdateItem", fmt.Errorf("no attributes to update"))
	}

	marshalled := make(persistence.Item, len(changes))
	for name, value := range changes {
		if name == persistence.AttrPK || name == persistence.AttrSK {
			return nil, apperrors.NewStorage("UpdateItem", fmt.Errorf("cannot update key attribute %s", name))
		}
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, apperrors.NewStorage("UpdateItem", fmt.Errorf("marshal %s: %w", name, err))
		}
		marshalled[name] = av
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.items[key]
	if err := checkCondition(cond, exists); err != nil {
		return nil, err
	}

	next := persistence.Item{
		persistence.AttrPK: &types.AttributeValueMemberS{Value: key.PartitionKey},
		persistence.AttrSK: &types.AttributeValueMemberS{Value: key.SortKey},
	}
	for k, v := range current {
		next[k] = v
	}
	for k, v := range marshalled {
		next[k] = v
	}
	s.items[key] = next
	return copyItem(next), nil
}

func (s *Store) Delete(ctx context.Context, key persistence.Key) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewTransientStorage("DeleteItem", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

func (s *Store) Increment(ctx context.Context, key persistence.Key, attribute string, delta int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperrors.NewTransientStorage("UpdateItem", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		item = persistence.Item{
			persistence.AttrPK: &types.AttributeValueMemberS{Value: key.PartitionKey},
			persistence.AttrSK: &types.AttributeValueMemberS{Value: key.SortKey},
		}
	} else {
		item = copyItem(item)
	}

	var current int64
	if av, present := item[attribute]; present {
		n, isNumber := av.(*types.AttributeValueMemberN)
		if !isNumber {
			return 0, apperrors.NewStorage("UpdateItem", fmt.Errorf("attribute %s is not a number", attribute))
		}
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return 0, apperrors.NewStorage("UpdateItem", fmt.Errorf("attribute %s: %w", attribute, err))
		}
		current = v
	}

	current += delta
	item[attribute] = &types.AttributeValueMemberN{Value: strconv.FormatInt(current, 10)}
	s.items[key] = item
	return current, nil
}

type indexed struct {
	item persistence.Item
	pk   string // base table PK
	sk   string // base table SK
	isk  string // index sort key
}

// position orders items the way an index lists them: by index sort key, then
// by base table key to break ties on GSIs.
func (e indexed) position() [3]string {
	return [3]string{e.isk, e.pk, e.sk}
}

func less(a, b [3]string) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (s *Store) Query(ctx context.Context, q persistence.Query) (*persistence.QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTransientStorage("Query", err)
	}
	pkAttr, skAttr := q.Index.KeyAttributes()

	s.mu.RLock()
	matches := make([]indexed, 0)
	for key, item := range s.items {
		pk, ok := stringAttr(item, pkAttr)
		if !ok || pk != q.PartitionKey {
			continue
		}
		isk, ok := stringAttr(item, skAttr)
		if !ok || !strings.HasPrefix(isk, q.SortKeyPrefix) {
			continue
		}
		matches = append(matches, indexed{item: copyItem(item), pk: key.PartitionKey, sk: key.SortKey, isk: isk})
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if q.Descending {
			return less(matches[j].position(), matches[i].position())
		}
		return less(matches[i].position(), matches[j].position())
	})

	if len(q.StartKey) > 0 {
		start := [3]string{q.StartKey[skAttr], q.StartKey[persistence.AttrPK], q.StartKey[persistence.AttrSK]}
		idx := sort.Search(len(matches), func(i int) bool {
			if q.Descending {
				return less(matches[i].position(), start)
			}
			return less(start, matches[i].position())
		})
		matches = matches[idx:]
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.PageSize
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	result := &persistence.QueryResult{}
	page := matches
	if int(limit) < len(matches) {
		page = matches[:limit]
		last := page[len(page)-1]
		result.LastEvaluated = map[string]string{
			persistence.AttrPK: last.pk,
			persistence.AttrSK: last.sk,
		}
		if q.Index != persistence.PrimaryIndex {
			result.LastEvaluated[pkAttr] = q.PartitionKey
			result.LastEvaluated[skAttr] = last.isk
		}
	}

	result.Items = make([]persistence.Item, 0, len(page))
	for _, m := range page {
		result.Items = append(result.Items, m.item)
	}
	return result, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewTransientStorage("DescribeTable", err)
	}
	return nil
}
