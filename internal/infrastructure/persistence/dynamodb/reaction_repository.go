package dynamodb

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/repository"
)

// ReactionRepository stores reactions under REACTION#{type}#{id}# in the
// repository partition. The whole relation is in the key, so the conditional
// create rejects a second identical reaction.
type ReactionRepository struct {
	targets repository.TargetResolver
	base    *GenericRepository[domain.Reaction]
}

var _ repository.ReactionRepository = (*ReactionRepository)(nil)

func NewReactionRepository(store persistence.Store, targets repository.TargetResolver, logger *zap.Logger, clock Clock) *ReactionRepository {
	return &ReactionRepository{
		targets: targets,
		base:    NewGenericRepository[domain.Reaction](store, ReactionCodec{}, named(logger, "reactions"), clock),
	}
}

// Create requires the target to exist in the reaction's repository.
func (r *ReactionRepository) Create(ctx context.Context, reaction domain.Reaction) (domain.Reaction, error) {
	if err := domain.Validate(reaction); err != nil {
		return domain.Reaction{}, err
	}
	repo := domain.RepoKey{Owner: reaction.Owner, RepoName: reaction.RepoName}
	ok, err := r.targets.Exists(ctx, repo, reaction.Target)
	if err != nil {
		return domain.Reaction{}, err
	}
	if !ok {
		return domain.Reaction{}, apperrors.NewValidationf("target", "%s does not exist in %s", reaction.Target, repo)
	}

	now := r.base.Now()
	reaction.CreatedAt, reaction.UpdatedAt = now, now
	return r.base.Create(ctx, reaction)
}

func (r *ReactionRepository) Get(ctx context.Context, repo domain.RepoKey, target domain.Target, user, emoji string) (*domain.Reaction, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return r.base.Get(ctx, ReactionKey(repo, target, user, emoji))
}

// ListByTarget reads every reaction on target and applies the filter in
// memory.
func (r *ReactionRepository) ListByTarget(ctx context.Context, repo domain.RepoKey, target domain.Target, filter repository.ReactionFilter) ([]domain.Reaction, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if filter.Limit < 0 {
		return nil, apperrors.NewValidation("limit", "must not be negative")
	}

	reactions, err := r.base.QueryAll(ctx, persistence.Query{
		PartitionKey:  BuildRepoPK(repo),
		SortKeyPrefix: reactionTargetPrefix(target),
	})
	if err != nil {
		return nil, err
	}

	if filter.Emoji != "" {
		reactions = lo.Filter(reactions, func(reaction domain.Reaction, _ int) bool {
			return reaction.Emoji == filter.Emoji
		})
	}
	if filter.Limit > 0 && len(reactions) > filter.Limit {
		reactions = reactions[:filter.Limit]
	}
	return reactions, nil
}

func (r *ReactionRepository) Delete(ctx context.Context, repo domain.RepoKey, target domain.Target, user, emoji string) error {
	if err := target.Validate(); err != nil {
		return err
	}
	return r.base.Delete(ctx, ReactionKey(repo, target, user, emoji))
}
