package dynamodb

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/repository"
)

// PullRequestRepository stores pull requests next to the issues of their
// repository, numbered from their own sequence.
type PullRequestRepository struct {
	store persistence.Store
	seq   repository.SequenceAllocator
	base  *GenericRepository[domain.PullRequest]
}

var _ repository.PullRequestRepository = (*PullRequestRepository)(nil)

func NewPullRequestRepository(store persistence.Store, seq repository.SequenceAllocator, logger *zap.Logger, clock Clock) *PullRequestRepository {
	return &PullRequestRepository{
		store: store,
		seq:   seq,
		base:  NewGenericRepository[domain.PullRequest](store, PullRequestCodec{}, named(logger, "pull_requests"), clock),
	}
}

func (r *PullRequestRepository) Create(ctx context.Context, pr domain.PullRequest) (domain.PullRequest, error) {
	if pr.Status == "" {
		pr.Status = domain.PullRequestOpen
	}
	if err := domain.Validate(pr); err != nil {
		return domain.PullRequest{}, err
	}
	if err := requireRepository(ctx, r.store, "repository", pr.Repo()); err != nil {
		return domain.PullRequest{}, err
	}

	number, err := r.seq.Next(ctx, pr.Repo(), SequencePullRequest)
	if err != nil {
		return domain.PullRequest{}, err
	}
	pr.PRNumber = number

	now := r.base.Now()
	pr.CreatedAt, pr.UpdatedAt = now, now
	return r.base.Create(ctx, pr)
}

func (r *PullRequestRepository) Get(ctx context.Context, repo domain.RepoKey, number int) (*domain.PullRequest, error) {
	return r.base.Get(ctx, PullRequestKey(repo, number))
}

func (r *PullRequestRepository) List(ctx context.Context, repo domain.RepoKey) ([]domain.PullRequest, error) {
	return r.base.QueryAll(ctx, persistence.Query{
		PartitionKey:  BuildRepoPK(repo),
		SortKeyPrefix: prefixPullRequest,
	})
}

func (r *PullRequestRepository) ListByStatus(ctx context.Context, repo domain.RepoKey, status domain.PullRequestStatus) ([]domain.PullRequest, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationf("status", "unknown pull request status %q", status)
	}
	return r.base.QueryAll(ctx, persistence.Query{
		Index:         persistence.GSI1,
		PartitionKey:  pullRequestStatusPK(repo),
		SortKeyPrefix: pullRequestStatusPrefix(status),
	})
}

func (r *PullRequestRepository) Update(ctx context.Context, repo domain.RepoKey, number int, changes domain.PullRequestUpdate) (domain.PullRequest, error) {
	if err := domain.Validate(changes); err != nil {
		return domain.PullRequest{}, err
	}

	set := map[string]any{}
	if changes.Title != nil {
		set["Title"] = *changes.Title
	}
	if changes.Body != nil {
		set["Body"] = *changes.Body
	}
	if changes.Status != nil {
		_, gsiSK := pullRequestStatusIndex(repo, *changes.Status, number)
		set["Status"] = string(*changes.Status)
		set[persistence.AttrGSI1SK] = gsiSK
	}
	if changes.SourceBranch != nil {
		set["SourceBranch"] = *changes.SourceBranch
	}
	if changes.TargetBranch != nil {
		set["TargetBranch"] = *changes.TargetBranch
	}
	if changes.MergeCommitSHA != nil {
		set["MergeCommitSHA"] = *changes.MergeCommitSHA
	}
	return r.base.Update(ctx, PullRequestKey(repo, number), set, strconv.Itoa(number))
}

func (r *PullRequestRepository) Delete(ctx context.Context, repo domain.RepoKey, number int) error {
	return r.base.Delete(ctx, PullRequestKey(repo, number))
}

func requirePullRequest(ctx context.Context, store persistence.Store, repo domain.RepoKey, number int) error {
	item, err := store.Get(ctx, PullRequestKey(repo, number))
	if err != nil {
		return err
	}
	if item == nil || itemType(item) != itemPullRequest {
		return apperrors.NewValidationf("pullrequest", "pull request %s#%d does not exist", repo, number)
	}
	return nil
}
