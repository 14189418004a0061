package dynamodb

import (
	"context"

	"go.uber.org/zap"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/repository"
)

// IssueCommentRepository stores comments under their issue's sort key prefix.
// Ids are time-ordered, so a prefix query lists comments oldest first.
type IssueCommentRepository struct {
	store persistence.Store
	base  *GenericRepository[domain.IssueComment]
}

var _ repository.IssueCommentRepository = (*IssueCommentRepository)(nil)

func NewIssueCommentRepository(store persistence.Store, logger *zap.Logger, clock Clock) *IssueCommentRepository {
	return &IssueCommentRepository{
		store: store,
		base:  NewGenericRepository[domain.IssueComment](store, IssueCommentCodec{}, named(logger, "issue_comments"), clock),
	}
}

// Create requires the parent issue and assigns a fresh CommentID.
func (r *IssueCommentRepository) Create(ctx context.Context, comment domain.IssueComment) (domain.IssueComment, error) {
	if err := domain.Validate(comment); err != nil {
		return domain.IssueComment{}, err
	}
	repo := domain.RepoKey{Owner: comment.Owner, RepoName: comment.RepoName}
	if err := requireIssue(ctx, r.store, repo, comment.IssueNumber); err != nil {
		return domain.IssueComment{}, err
	}

	id, err := domain.NewCommentID()
	if err != nil {
		return domain.IssueComment{}, apperrors.NewStorage("generate comment id", err)
	}
	comment.CommentID = id

	now := r.base.Now()
	comment.CreatedAt, comment.UpdatedAt = now, now
	return r.base.Create(ctx, comment)
}

func (r *IssueCommentRepository) Get(ctx context.Context, repo domain.RepoKey, issueNumber int, commentID string) (*domain.IssueComment, error) {
	return r.base.Get(ctx, IssueCommentKey(repo, issueNumber, commentID))
}

func (r *IssueCommentRepository) List(ctx context.Context, repo domain.RepoKey, issueNumber int) ([]domain.IssueComment, error) {
	return r.base.QueryAll(ctx, persistence.Query{
		PartitionKey:  BuildRepoPK(repo),
		SortKeyPrefix: issueCommentPrefix(issueNumber),
	})
}

func (r *IssueCommentRepository) Update(ctx context.Context, repo domain.RepoKey, issueNumber int, commentID, body string) (domain.IssueComment, error) {
	if body == "" {
		return domain.IssueComment{}, apperrors.NewValidation("body", "is required")
	}
	return r.base.Update(ctx, IssueCommentKey(repo, issueNumber, commentID), map[string]any{"Body": body}, commentID)
}

func (r *IssueCommentRepository) Delete(ctx context.Context, repo domain.RepoKey, issueNumber int, commentID string) error {
	return r.base.Delete(ctx, IssueCommentKey(repo, issueNumber, commentID))
}

// PRCommentRepository stores comments on pull requests.
type PRCommentRepository struct {
	store persistence.Store
	base  *GenericRepository[domain.PRComment]
}

var _ repository.PRCommentRepository = (*PRCommentRepository)(nil)

func NewPRCommentRepository(store persistence.Store, logger *zap.Logger, clock Clock) *PRCommentRepository {
	return &PRCommentRepository{
		store: store,
		base:  NewGenericRepository[domain.PRComment](store, PRCommentCodec{}, named(logger, "pr_comments"), clock),
	}
}

// Create requires the parent pull request and assigns a fresh CommentID.
func (r *PRCommentRepository) Create(ctx context.Context, comment domain.PRComment) (domain.PRComment, error) {
	if err := domain.Validate(comment); err != nil {
		return domain.PRComment{}, err
	}
	repo := domain.RepoKey{Owner: comment.Owner, RepoName: comment.RepoName}
	if err := requirePullRequest(ctx, r.store, repo, comment.PRNumber); err != nil {
		return domain.PRComment{}, err
	}

	id, err := domain.NewCommentID()
	if err != nil {
		return domain.PRComment{}, apperrors.NewStorage("generate comment id", err)
	}
	comment.CommentID = id

	now := r.base.Now()
	comment.CreatedAt, comment.UpdatedAt = now, now
	return r.base.Create(ctx, comment)
}

func (r *PRCommentRepository) Get(ctx context.Context, repo domain.RepoKey, prNumber int, commentID string) (*domain.PRComment, error) {
	return r.base.Get(ctx, PRCommentKey(repo, prNumber, commentID))
}

func (r *PRCommentRepository) List(ctx context.Context, repo domain.RepoKey, prNumber int) ([]domain.PRComment, error) {
	return r.base.QueryAll(ctx, persistence.Query{
		PartitionKey:  BuildRepoPK(repo),
		SortKeyPrefix: prCommentPrefix(prNumber),
	})
}

func (r *PRCommentRepository) Update(ctx context.Context, repo domain.RepoKey, prNumber int, commentID, body string) (domain.PRComment, error) {
	if body == "" {
		return domain.PRComment{}, apperrors.NewValidation("body", "is required")
	}
	return r.base.Update(ctx, PRCommentKey(repo, prNumber, commentID), map[string]any{"Body": body}, commentID)
}

func (r *PRCommentRepository) Delete(ctx context.Context, repo domain.RepoKey, prNumber int, commentID string) error {
	return r.base.Delete(ctx, PRCommentKey(repo, prNumber, commentID))
}
