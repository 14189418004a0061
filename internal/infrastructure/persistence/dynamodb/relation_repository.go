package dynamodb

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/repository"
)

// ============================================================================
// FORKS
// ============================================================================

// ForkRepository stores fork relations in the original's partition.
type ForkRepository struct {
	store persistence.Store
	base  *GenericRepository[domain.Fork]
}

var _ repository.ForkRepository = (*ForkRepository)(nil)

func NewForkRepository(store persistence.Store, logger *zap.Logger, clock Clock) *ForkRepository {
	return &ForkRepository{
		store: store,
		base:  NewGenericRepository[domain.Fork](store, ForkCodec{}, named(logger, "forks"), clock),
	}
}

// Create requires both repositories to exist. The two reads run
// concurrently.
func (r *ForkRepository) Create(ctx context.Context, fork domain.Fork) (domain.Fork, error) {
	if err := domain.Validate(fork); err != nil {
		return domain.Fork{}, err
	}
	if fork.Original() == fork.Copy() {
		return domain.Fork{}, apperrors.NewValidation("fork_repo", "a repository cannot be a fork of itself")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return requireRepository(gctx, r.store, "original_repo", fork.Original()) })
	g.Go(func() error { return requireRepository(gctx, r.store, "fork_repo", fork.Copy()) })
	if err := g.Wait(); err != nil {
		return domain.Fork{}, err
	}

	now := r.base.Now()
	fork.CreatedAt, fork.UpdatedAt = now, now
	return r.base.Create(ctx, fork)
}

func (r *ForkRepository) Get(ctx context.Context, original, fork domain.RepoKey) (*domain.Fork, error) {
	return r.base.Get(ctx, ForkKey(original, fork))
}

// ListForks returns the forks of original ordered by fork owner and name.
func (r *ForkRepository) ListForks(ctx context.Context, original domain.RepoKey) ([]domain.Fork, error) {
	return r.base.QueryAll(ctx, persistence.Query{
		PartitionKey:  BuildRepoPK(original),
		SortKeyPrefix: prefixFork,
	})
}

func (r *ForkRepository) Delete(ctx context.Context, original, fork domain.RepoKey) error {
	return r.base.Delete(ctx, ForkKey(original, fork))
}

// ============================================================================
// STARS
// ============================================================================

// StarRepository stores stars in the user's partition. GSI2 lists them from
// the repository's side.
type StarRepository struct {
	store persistence.Store
	base  *GenericRepository[domain.Star]
}

var _ repository.StarRepository = (*StarRepository)(nil)

func NewStarRepository(store persistence.Store, logger *zap.Logger, clock Clock) *StarRepository {
	return &StarRepository{
		store: store,
		base:  NewGenericRepository[domain.Star](store, StarCodec{}, named(logger, "stars"), clock),
	}
}

// Create requires the user and the repository to exist. Organizations cannot
// star.
func (r *StarRepository) Create(ctx context.Context, star domain.Star) (domain.Star, error) {
	if err := domain.Validate(star); err != nil {
		return domain.Star{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return requireUser(gctx, r.store, star.Username) })
	g.Go(func() error { return requireRepository(gctx, r.store, "repository", star.Repo()) })
	if err := g.Wait(); err != nil {
		return domain.Star{}, err
	}

	now := r.base.Now()
	star.CreatedAt, star.UpdatedAt = now, now
	return r.base.Create(ctx, star)
}

func (r *StarRepository) Get(ctx context.Context, username string, repo domain.RepoKey) (*domain.Star, error) {
	return r.base.Get(ctx, StarKey(username, repo))
}

func (r *StarRepository) IsStarred(ctx context.Context, username string, repo domain.RepoKey) (bool, error) {
	return r.base.Exists(ctx, StarKey(username, repo))
}

// ListByUser returns the repositories username starred, ordered by
// repository.
func (r *StarRepository) ListByUser(ctx context.Context, username string) ([]domain.Star, error) {
	return r.base.QueryAll(ctx, persistence.Query{
		PartitionKey:  BuildAccountPK(username),
		SortKeyPrefix: prefixStar,
	})
}

// ListStargazers returns the stars on repo, ordered by username.
func (r *StarRepository) ListStargazers(ctx context.Context, repo domain.RepoKey) ([]domain.Star, error) {
	return r.base.QueryAll(ctx, persistence.Query{
		Index:         persistence.GSI2,
		PartitionKey:  BuildRepoPK(repo),
		SortKeyPrefix: prefixStar,
	})
}

func (r *StarRepository) Delete(ctx context.Context, username string, repo domain.RepoKey) error {
	return r.base.Delete(ctx, StarKey(username, repo))
}

func requireUser(ctx context.Context, store persistence.Store, username string) error {
	item, err := store.Get(ctx, AccountKey(username))
	if err != nil {
		return err
	}
	if item == nil || itemType(item) != itemUser {
		return apperrors.NewValidationf("username", "user %s does not exist", username)
	}
	return nil
}
