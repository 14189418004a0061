package dynamodb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/repository"
)

// Sequence names. Issues and pull requests of one repository count
// independently.
const (
	SequenceIssue       = "issue"
	SequencePullRequest = "pullrequest"
)

const attrCounterValue = "Value"

// SequenceAllocator hands out per-repository numbers from an atomically
// incremented counter item. Numbers consumed by a failed create are not
// reused, so sequences may have gaps but never duplicates.
type SequenceAllocator struct {
	store  persistence.Store
	logger *zap.Logger
}

var _ repository.SequenceAllocator = (*SequenceAllocator)(nil)

// NewSequenceAllocator creates an allocator over store.
func NewSequenceAllocator(store persistence.Store, logger *zap.Logger) *SequenceAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SequenceAllocator{store: store, logger: logger.Named("sequence")}
}

// Next returns the next value of the named sequence. The first call for a
// scope returns 1.
func (s *SequenceAllocator) Next(ctx context.Context, scope domain.RepoKey, name string) (int, error) {
	if name == "" {
		return 0, apperrors.NewValidation("sequence", "name is required")
	}

	value, err := s.store.Increment(ctx, CounterKey(scope, name), attrCounterValue, 1)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("sequence advanced",
		zap.String("scope", scope.String()),
		zap.String("sequence", name),
		zap.Int64("value", value))
	return int(value), nil
}

// Current returns the last issued value, or 0 before the first Next.
func (s *SequenceAllocator) Current(ctx context.Context, scope domain.RepoKey, name string) (int, error) {
	item, err := s.store.Get(ctx, CounterKey(scope, name))
	if err != nil || item == nil {
		return 0, err
	}

	n, ok := item[attrCounterValue].(*types.AttributeValueMemberN)
	if !ok {
		return 0, apperrors.NewCorruptItem("Counter", fmt.Errorf("%s is not a number", attrCounterValue))
	}
	value, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, apperrors.NewCorruptItem("Counter", err)
	}
	return value, nil
}
