package dynamodb

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/repository"
)

// RepoRepository stores hosted repositories. Listing by owner goes through
// GSI3.
type RepoRepository struct {
	store persistence.Store
	base  *GenericRepository[domain.Repository]
}

var _ repository.RepoRepository = (*RepoRepository)(nil)

func NewRepoRepository(store persistence.Store, logger *zap.Logger, clock Clock) *RepoRepository {
	return &RepoRepository{
		store: store,
		base:  NewGenericRepository[domain.Repository](store, RepositoryCodec{}, named(logger, "repositories"), clock),
	}
}

// Create requires the owner to be an existing user or organization.
func (r *RepoRepository) Create(ctx context.Context, repo domain.Repository) (domain.Repository, error) {
	if err := domain.Validate(repo); err != nil {
		return domain.Repository{}, err
	}
	ok, err := accountExists(ctx, r.store, repo.Owner)
	if err != nil {
		return domain.Repository{}, err
	}
	if !ok {
		return domain.Repository{}, apperrors.NewValidationf("owner", "account %s does not exist", repo.Owner)
	}

	now := r.base.Now()
	repo.CreatedAt, repo.UpdatedAt = now, now
	return r.base.Create(ctx, repo)
}

func (r *RepoRepository) Get(ctx context.Context, key domain.RepoKey) (*domain.Repository, error) {
	return r.base.Get(ctx, RepositoryKey(key))
}

func (r *RepoRepository) Exists(ctx context.Context, key domain.RepoKey) (bool, error) {
	return r.base.Exists(ctx, RepositoryKey(key))
}

// ListByOwner returns one page of owner's repositories in name order.
func (r *RepoRepository) ListByOwner(ctx context.Context, owner string, page repository.PageRequest) (repository.Page[domain.Repository], error) {
	return r.base.QueryPage(ctx, persistence.Query{
		Index:         persistence.GSI3,
		PartitionKey:  BuildAccountPK(owner),
		SortKeyPrefix: prefixRepo,
	}, page)
}

func (r *RepoRepository) Update(ctx context.Context, key domain.RepoKey, changes domain.RepositoryUpdate) (domain.Repository, error) {
	if err := domain.Validate(changes); err != nil {
		return domain.Repository{}, err
	}
	set := map[string]any{}
	if changes.Description != nil {
		set["Description"] = *changes.Description
	}
	if changes.IsPrivate != nil {
		set["IsPrivate"] = *changes.IsPrivate
	}
	if changes.Language != nil {
		set["Language"] = *changes.Language
	}
	return r.base.Update(ctx, RepositoryKey(key), set, key.String())
}

func (r *RepoRepository) Delete(ctx context.Context, key domain.RepoKey) error {
	return r.base.Delete(ctx, RepositoryKey(key))
}

// requireRepository fails with a ValidationError on field when repo is not
// stored.
func requireRepository(ctx context.Context, store persistence.Store, field string, repo domain.RepoKey) error {
	item, err := store.Get(ctx, RepositoryKey(repo))
	if err != nil {
		return err
	}
	if item == nil || itemType(item) != itemRepository {
		return apperrors.NewValidation(field, fmt.Sprintf("repository %s does not exist", repo))
	}
	return nil
}
