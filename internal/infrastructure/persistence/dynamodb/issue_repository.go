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

// IssueRepository stores issues in their repository's partition and lists
// them by status through GSI1.
type IssueRepository struct {
	store persistence.Store
	seq   repository.SequenceAllocator
	base  *GenericRepository[domain.Issue]
}

var _ repository.IssueRepository = (*IssueRepository)(nil)

func NewIssueRepository(store persistence.Store, seq repository.SequenceAllocator, logger *zap.Logger, clock Clock) *IssueRepository {
	return &IssueRepository{
		store: store,
		seq:   seq,
		base:  NewGenericRepository[domain.Issue](store, IssueCodec{}, named(logger, "issues"), clock),
	}
}

// Create checks the repository, takes the next issue number and writes the
// issue. A missing status defaults to open. The caller's IssueNumber is
// ignored.
func (r *IssueRepository) Create(ctx context.Context, issue domain.Issue) (domain.Issue, error) {
	if issue.Status == "" {
		issue.Status = domain.IssueOpen
	}
	issue.Assignees = normalizeNames(issue.Assignees)
	issue.Labels = normalizeNames(issue.Labels)
	if err := domain.Validate(issue); err != nil {
		return domain.Issue{}, err
	}
	if err := requireRepository(ctx, r.store, "repository", issue.Repo()); err != nil {
		return domain.Issue{}, err
	}

	number, err := r.seq.Next(ctx, issue.Repo(), SequenceIssue)
	if err != nil {
		return domain.Issue{}, err
	}
	issue.IssueNumber = number

	now := r.base.Now()
	issue.CreatedAt, issue.UpdatedAt = now, now
	return r.base.Create(ctx, issue)
}

func (r *IssueRepository) Get(ctx context.Context, repo domain.RepoKey, number int) (*domain.Issue, error) {
	return r.base.Get(ctx, IssueKey(repo, number))
}

// List returns every issue of repo in number order.
func (r *IssueRepository) List(ctx context.Context, repo domain.RepoKey) ([]domain.Issue, error) {
	return r.base.QueryAll(ctx, persistence.Query{
		PartitionKey:  BuildRepoPK(repo),
		SortKeyPrefix: prefixIssue,
	})
}

// ListByStatus returns the issues of repo in one status, in number order.
func (r *IssueRepository) ListByStatus(ctx context.Context, repo domain.RepoKey, status domain.IssueStatus) ([]domain.Issue, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationf("status", "unknown issue status %q", status)
	}
	return r.base.QueryAll(ctx, persistence.Query{
		Index:         persistence.GSI1,
		PartitionKey:  issueStatusPK(repo),
		SortKeyPrefix: issueStatusPrefix(status),
	})
}

// Update sets only the supplied fields. A status change moves the issue in
// the status index too.
func (r *IssueRepository) Update(ctx context.Context, repo domain.RepoKey, number int, changes domain.IssueUpdate) (domain.Issue, error) {
	if err := domain.Validate(changes); err != nil {
		return domain.Issue{}, err
	}

	set := map[string]any{}
	if changes.Title != nil {
		set["Title"] = *changes.Title
	}
	if changes.Body != nil {
		set["Body"] = *changes.Body
	}
	if changes.Status != nil {
		_, gsiSK := issueStatusIndex(repo, *changes.Status, number)
		set["Status"] = string(*changes.Status)
		set[persistence.AttrGSI1SK] = gsiSK
	}
	if changes.Assignees != nil {
		set["Assignees"] = normalizeNames(*changes.Assignees)
	}
	if changes.Labels != nil {
		set["Labels"] = normalizeNames(*changes.Labels)
	}
	return r.base.Update(ctx, IssueKey(repo, number), set, strconv.Itoa(number))
}

func (r *IssueRepository) Delete(ctx context.Context, repo domain.RepoKey, number int) error {
	return r.base.Delete(ctx, IssueKey(repo, number))
}

// requireIssue fails with a ValidationError("issue") when the issue is not
// stored.
func requireIssue(ctx context.Context, store persistence.Store, repo domain.RepoKey, number int) error {
	item, err := store.Get(ctx, IssueKey(repo, number))
	if err != nil {
		return err
	}
	if item == nil || itemType(item) != itemIssue {
		return apperrors.NewValidationf("issue", "issue %s#%d does not exist", repo, number)
	}
	return nil
}
