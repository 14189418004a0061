package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/repository"
)

// PullRequestService manages pull requests and their comments.
type PullRequestService struct {
	prs      repository.PullRequestRepository
	comments repository.PRCommentRepository
	logger   *zap.Logger
}

func NewPullRequestService(prs repository.PullRequestRepository, comments repository.PRCommentRepository, logger *zap.Logger) *PullRequestService {
	return &PullRequestService{prs: prs, comments: comments, logger: named(logger, "pullrequests")}
}

// CreatePullRequest stores a new pull request under the next pull request
// number of its repository.
func (s *PullRequestService) CreatePullRequest(ctx context.Context, pr domain.PullRequest) (domain.PullRequest, error) {
	created, err := s.prs.Create(ctx, pr)
	if err != nil {
		return domain.PullRequest{}, err
	}
	s.logger.Info("pull request created",
		zap.Stringer("repository", created.Repo()),
		zap.Int("pr_number", created.PRNumber))
	return created, nil
}

func (s *PullRequestService) GetPullRequest(ctx context.Context, repo domain.RepoKey, number int) (domain.PullRequest, error) {
	pr, err := s.prs.Get(ctx, repo, number)
	return required(pr, err, domain.EntityPullRequest, strconv.Itoa(number))
}

// ListPullRequests returns the repository's pull requests by number,
// optionally restricted to one status.
func (s *PullRequestService) ListPullRequests(ctx context.Context, repo domain.RepoKey, status domain.PullRequestStatus) ([]domain.PullRequest, error) {
	if status == "" {
		return s.prs.List(ctx, repo)
	}
	return s.prs.ListByStatus(ctx, repo, status)
}

func (s *PullRequestService) UpdatePullRequest(ctx context.Context, repo domain.RepoKey, number int, changes domain.PullRequestUpdate) (domain.PullRequest, error) {
	current, err := s.GetPullRequest(ctx, repo, number)
	if err != nil || changes.Empty() {
		return current, err
	}
	return s.prs.Update(ctx, repo, number, changes)
}

// MergePullRequest marks an open pull request merged at commitSHA.
func (s *PullRequestService) MergePullRequest(ctx context.Context, repo domain.RepoKey, number int, commitSHA string) (domain.PullRequest, error) {
	current, err := s.GetPullRequest(ctx, repo, number)
	if err != nil {
		return domain.PullRequest{}, err
	}
	if current.Status != domain.PullRequestOpen {
		return domain.PullRequest{}, apperrors.NewValidationf("status", "pull request #%d is %s", number, current.Status)
	}
	merged := domain.PullRequestMerged
	return s.prs.Update(ctx, repo, number, domain.PullRequestUpdate{Status: &merged, MergeCommitSHA: &commitSHA})
}

func (s *PullRequestService) DeletePullRequest(ctx context.Context, repo domain.RepoKey, number int) error {
	if _, err := s.GetPullRequest(ctx, repo, number); err != nil {
		return err
	}
	if err := s.prs.Delete(ctx, repo, number); err != nil {
		return err
	}
	s.logger.Info("pull request deleted", zap.Stringer("repository", repo), zap.Int("pr_number", number))
	return nil
}

func (s *PullRequestService) AddComment(ctx context.Context, repo domain.RepoKey, number int, author, body string) (domain.PRComment, error) {
	return s.comments.Create(ctx, domain.PRComment{
		Owner:    repo.Owner,
		RepoName: repo.RepoName,
		PRNumber: number,
		Author:   author,
		Body:     body,
	})
}

func (s *PullRequestService) GetComment(ctx context.Context, repo domain.RepoKey, number int, commentID string) (domain.PRComment, error) {
	comment, err := s.comments.Get(ctx, repo, number, commentID)
	return required(comment, err, domain.EntityPRComment, commentID)
}

func (s *PullRequestService) ListComments(ctx context.Context, repo domain.RepoKey, number int) ([]domain.PRComment, error) {
	return s.comments.List(ctx, repo, number)
}

func (s *PullRequestService) UpdateComment(ctx context.Context, repo domain.RepoKey, number int, commentID, body string) (domain.PRComment, error) {
	if _, err := s.GetComment(ctx, repo, number, commentID); err != nil {
		return domain.PRComment{}, err
	}
	return s.comments.Update(ctx, repo, number, commentID, body)
}

func (s *PullRequestService) DeleteComment(ctx context.Context, repo domain.RepoKey, number int, commentID string) error {
	if _, err := s.GetComment(ctx, repo, number, commentID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, repo, number, commentID)
}
