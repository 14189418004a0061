// Package dynamodb maps the domain entities onto the single table.
//
// GenericRepository[T] holds every operation that does not depend on the
// entity kind (conditional create, typed point reads, partial updates,
// paged queries). The per-entity repositories compose it with an
// EntityCodec[T] and add the cross-entity checks their kind needs: parent
// existence, sequence allocation and target resolution.
//
// Nothing here retries, locks or reads-then-writes for uniqueness. Uniqueness
// is the IfNotExists condition of the store; sequence numbers come from its
// atomic increment.
package dynamodb

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/repository"
)

// ============================================================================
// ENTITY CODEC
// ============================================================================

// EntityCodec converts one entity kind to and from table items and owns its
// key derivation. ParseItem(ToItem(e)) must equal e for every valid e.
type EntityCodec[T any] interface {
	// EntityType names the kind in errors, e.g. "IssueEntity".
	EntityType() string
	// ItemType is the value of the EntityType attribute of stored items.
	ItemType() string
	// KeyOf derives the table key of an entity.
	KeyOf(entity T) persistence.Key
	// NaturalKey renders the natural key for error messages.
	NaturalKey(entity T) string
	// ToItem validates and encodes an entity.
	ToItem(entity T) (persistence.Item, error)
	// ParseItem decodes an item, failing with a corrupt-item StorageError.
	ParseItem(item persistence.Item) (T, error)
}

// Clock supplies server-side timestamps.
type Clock func() time.Time

// UTCClock is the default clock.
func UTCClock() time.Time {
	return time.Now().UTC()
}

// ============================================================================
// GENERIC REPOSITORY IMPLEMENTATION
// ============================================================================

// GenericRepository provides the common table operations for an entity type.
type GenericRepository[T any] struct {
	store  persistence.Store
	codec  EntityCodec[T]
	logger *zap.Logger
	clock  Clock
}

// NewGenericRepository creates a new generic repository instance.
func NewGenericRepository[T any](store persistence.Store, codec EntityCodec[T], logger *zap.Logger, clock Clock) *GenericRepository[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = UTCClock
	}
	return &GenericRepository[T]{
		store:  store,
		codec:  codec,
		logger: logger,
		clock:  clock,
	}
}

// Now returns the current server timestamp.
func (r *GenericRepository[T]) Now() time.Time {
	return r.clock()
}

// Create writes entity if its key is free.
func (r *GenericRepository[T]) Create(ctx context.Context, entity T) (T, error) {
	var zero T

	item, err := r.codec.ToItem(entity)
	if err != nil {
		return zero, err
	}

	if err := r.store.Put(ctx, item, persistence.IfNotExists); err != nil {
		if errors.Is(err, persistence.ErrConditionFailed) {
			return zero, apperrors.NewDuplicate(r.codec.EntityType(), r.codec.NaturalKey(entity))
		}
		return zero, err
	}

	r.logger.Debug("entity created",
		zap.String("entity_type", r.codec.EntityType()),
		zap.String("key", r.codec.NaturalKey(entity)))
	return entity, nil
}

// Get reads the entity at key. Absent items and items of another kind
// sharing the key both yield (nil, nil).
func (r *GenericRepository[T]) Get(ctx context.Context, key persistence.Key) (*T, error) {
	item, err := r.store.Get(ctx, key)
	if err != nil || item == nil {
		return nil, err
	}
	if itemType(item) != r.codec.ItemType() {
		return nil, nil
	}

	entity, err := r.codec.ParseItem(item)
	if err != nil {
		r.logger.Warn("undecodable item",
			zap.String("pk", key.PartitionKey),
			zap.String("sk", key.SortKey),
			zap.Error(err))
		return nil, err
	}
	return &entity, nil
}

// Exists reports whether an entity of this kind is stored at key.
func (r *GenericRepository[T]) Exists(ctx context.Context, key persistence.Key) (bool, error) {
	item, err := r.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return item != nil && itemType(item) == r.codec.ItemType(), nil
}

// Update sets the given attributes plus UpdatedAt on an existing item and
// returns the stored result. naturalKey names the entity in a not-found error.
func (r *GenericRepository[T]) Update(ctx context.Context, key persistence.Key, changes map[string]any, naturalKey string) (T, error) {
	var zero T

	set := make(map[string]any, len(changes)+1)
	for k, v := range changes {
		set[k] = v
	}
	set[attrUpdatedAt] = encodeTime(r.clock())

	item, err := r.store.Update(ctx, key, set, persistence.IfExists)
	if err != nil {
		if errors.Is(err, persistence.ErrConditionFailed) {
			return zero, apperrors.NewNotFound(r.codec.EntityType(), naturalKey)
		}
		return zero, err
	}

	r.logger.Debug("entity updated",
		zap.String("entity_type", r.codec.EntityType()),
		zap.String("key", naturalKey),
		zap.Int("attributes", len(set)))
	return r.codec.ParseItem(item)
}

// Delete removes the item at key unconditionally.
func (r *GenericRepository[T]) Delete(ctx context.Context, key persistence.Key) error {
	return r.store.Delete(ctx, key)
}

// QueryAll follows continuation keys until the query is exhausted.
func (r *GenericRepository[T]) QueryAll(ctx context.Context, q persistence.Query) ([]T, error) {
	var entities []T
	for {
		res, err := r.store.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		entities = append(entities, r.parseItems(res.Items)...)
		if len(res.LastEvaluated) == 0 {
			return entities, nil
		}
		q.StartKey = res.LastEvaluated
	}
}

// QueryPage reads one page of q, continuing from page.Cursor.
func (r *GenericRepository[T]) QueryPage(ctx context.Context, q persistence.Query, page repository.PageRequest) (repository.Page[T], error) {
	start, err := persistence.DecodeCursor(page.Cursor)
	if err != nil {
		return repository.Page[T]{}, err
	}
	q.StartKey = start
	q.Limit = int32(page.EffectiveLimit())

	res, err := r.store.Query(ctx, q)
	if err != nil {
		return repository.Page[T]{}, err
	}
	return repository.Page[T]{
		Items:      r.parseItems(res.Items),
		NextCursor: persistence.EncodeCursor(res.LastEvaluated),
	}, nil
}

// parseItems decodes items of this kind, skipping the rest. A corrupt item
// is logged and left out so one bad record cannot hide a whole listing.
func (r *GenericRepository[T]) parseItems(items []persistence.Item) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if itemType(item) != r.codec.ItemType() {
			continue
		}
		entity, err := r.codec.ParseItem(item)
		if err != nil {
			r.logger.Warn("skipping undecodable item",
				zap.String("entity_type", r.codec.EntityType()),
				zap.Error(err))
			continue
		}
		out = append(out, entity)
	}
	return out
}
