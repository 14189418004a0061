package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github-ddb-backend/internal/domain"
	"github-ddb-backend/internal/repository"
)

// RepositoryService manages hosted repositories and their fork and star
// relations.
type RepositoryService struct {
	repos  repository.RepoRepository
	forks  repository.ForkRepository
	stars  repository.StarRepository
	logger *zap.Logger
}

func NewRepositoryService(repos repository.RepoRepository, forks repository.ForkRepository, stars repository.StarRepository, logger *zap.Logger) *RepositoryService {
	return &RepositoryService{repos: repos, forks: forks, stars: stars, logger: named(logger, "repositories")}
}

func (s *RepositoryService) CreateRepository(ctx context.Context, repo domain.Repository) (domain.Repository, error) {
	created, err := s.repos.Create(ctx, repo)
	if err != nil {
		return domain.Repository{}, err
	}
	s.logger.Info("repository created", zap.String("repository", created.FullName()))
	return created, nil
}

func (s *RepositoryService) GetRepository(ctx context.Context, key domain.RepoKey) (domain.Repository, error) {
	repo, err := s.repos.Get(ctx, key)
	return required(repo, err, domain.EntityRepository, key.String())
}

// ListRepositories returns one page of the owner's repositories ordered by
// name.
func (s *RepositoryService) ListRepositories(ctx context.Context, owner string, page repository.PageRequest) (repository.Page[domain.Repository], error) {
	return s.repos.ListByOwner(ctx, owner, page)
}

func (s *RepositoryService) UpdateRepository(ctx context.Context, key domain.RepoKey, changes domain.RepositoryUpdate) (domain.Repository, error) {
	current, err := s.GetRepository(ctx, key)
	if err != nil || changes.Empty() {
		return current, err
	}
	return s.repos.Update(ctx, key, changes)
}

// DeleteRepository removes the repository item only. Issues, pull requests,
// comments and reactions stored under it are left in place.
func (s *RepositoryService) DeleteRepository(ctx context.Context, key domain.RepoKey) error {
	if _, err := s.GetRepository(ctx, key); err != nil {
		return err
	}
	if err := s.repos.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.Info("repository deleted", zap.Stringer("repository", key))
	return nil
}

// ForkRepository records that fork was forked from original. Both
// repositories must already exist.
func (s *RepositoryService) ForkRepository(ctx context.Context, original, fork domain.RepoKey) (domain.Fork, error) {
	created, err := s.forks.Create(ctx, domain.Fork{
		OriginalOwner: original.Owner,
		OriginalRepo:  original.RepoName,
		ForkOwner:     fork.Owner,
		ForkRepo:      fork.RepoName,
	})
	if err != nil {
		return domain.Fork{}, err
	}
	s.logger.Info("fork recorded", zap.Stringer("original", original), zap.Stringer("fork", fork))
	return created, nil
}

func (s *RepositoryService) GetFork(ctx context.Context, original, fork domain.RepoKey) (domain.Fork, error) {
	f, err := s.forks.Get(ctx, original, fork)
	return required(f, err, domain.EntityFork, forkKey(original, fork))
}

func (s *RepositoryService) ListForks(ctx context.Context, original domain.RepoKey) ([]domain.Fork, error) {
	return s.forks.ListForks(ctx, original)
}

func (s *RepositoryService) DeleteFork(ctx context.Context, original, fork domain.RepoKey) error {
	if _, err := s.GetFork(ctx, original, fork); err != nil {
		return err
	}
	return s.forks.Delete(ctx, original, fork)
}

func (s *RepositoryService) StarRepository(ctx context.Context, username string, repo domain.RepoKey) (domain.Star, error) {
	return s.stars.Create(ctx, domain.Star{Username: username, RepoOwner: repo.Owner, RepoName: repo.RepoName})
}

func (s *RepositoryService) UnstarRepository(ctx context.Context, username string, repo domain.RepoKey) error {
	star, err := s.stars.Get(ctx, username, repo)
	if _, err := required(star, err, domain.EntityStar, starKey(username, repo)); err != nil {
		return err
	}
	return s.stars.Delete(ctx, username, repo)
}

func (s *RepositoryService) IsStarred(ctx context.Context, username string, repo domain.RepoKey) (bool, error) {
	return s.stars.IsStarred(ctx, username, repo)
}

// ListStarred returns the repositories starred by username.
func (s *RepositoryService) ListStarred(ctx context.Context, username string) ([]domain.Star, error) {
	return s.stars.ListByUser(ctx, username)
}

func (s *RepositoryService) ListStargazers(ctx context.Context, repo domain.RepoKey) ([]domain.Star, error) {
	return s.stars.ListStargazers(ctx, repo)
}

func forkKey(original, fork domain.RepoKey) string {
	return fmt.Sprintf("%s->%s", original, fork)
}

func starKey(username string, repo domain.RepoKey) string {
	return fmt.Sprintf("%s->%s", username, repo)
}
