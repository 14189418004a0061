package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github-ddb-backend/internal/domain"
	"github-ddb-backend/internal/repository"
)

// IssueService manages issues and their comments.
type IssueService struct {
	issues   repository.IssueRepository
	comments repository.IssueCommentRepository
	logger   *zap.Logger
}

func NewIssueService(issues repository.IssueRepository, comments repository.IssueCommentRepository, logger *zap.Logger) *IssueService {
	return &IssueService{issues: issues, comments: comments, logger: named(logger, "issues")}
}

// CreateIssue stores a new issue under the next issue number of its
// repository.
func (s *IssueService) CreateIssue(ctx context.Context, issue domain.Issue) (domain.Issue, error) {
	created, err := s.issues.Create(ctx, issue)
	if err != nil {
		return domain.Issue{}, err
	}
	s.logger.Info("issue created",
		zap.Stringer("repository", created.Repo()),
		zap.Int("issue_number", created.IssueNumber))
	return created, nil
}

func (s *IssueService) GetIssue(ctx context.Context, repo domain.RepoKey, number int) (domain.Issue, error) {
	issue, err := s.issues.Get(ctx, repo, number)
	return required(issue, err, domain.EntityIssue, strconv.Itoa(number))
}

// ListIssues returns the repository's issues by number. A non-empty status
// restricts the listing to issues in that state.
func (s *IssueService) ListIssues(ctx context.Context, repo domain.RepoKey, status domain.IssueStatus) ([]domain.Issue, error) {
	if status == "" {
		return s.issues.List(ctx, repo)
	}
	return s.issues.ListByStatus(ctx, repo, status)
}

func (s *IssueService) UpdateIssue(ctx context.Context, repo domain.RepoKey, number int, changes domain.IssueUpdate) (domain.Issue, error) {
	current, err := s.GetIssue(ctx, repo, number)
	if err != nil || changes.Empty() {
		return current, err
	}
	return s.issues.Update(ctx, repo, number, changes)
}

// DeleteIssue removes the issue. Its comments and reactions are kept.
func (s *IssueService) DeleteIssue(ctx context.Context, repo domain.RepoKey, number int) error {
	if _, err := s.GetIssue(ctx, repo, number); err != nil {
		return err
	}
	if err := s.issues.Delete(ctx, repo, number); err != nil {
		return err
	}
	s.logger.Info("issue deleted", zap.Stringer("repository", repo), zap.Int("issue_number", number))
	return nil
}

// AddComment stores a comment on an existing issue. The comment id is
// assigned by the repository.
func (s *IssueService) AddComment(ctx context.Context, repo domain.RepoKey, number int, author, body string) (domain.IssueComment, error) {
	return s.comments.Create(ctx, domain.IssueComment{
		Owner:       repo.Owner,
		RepoName:    repo.RepoName,
		IssueNumber: number,
		Author:      author,
		Body:        body,
	})
}

func (s *IssueService) GetComment(ctx context.Context, repo domain.RepoKey, number int, commentID string) (domain.IssueComment, error) {
	comment, err := s.comments.Get(ctx, repo, number, commentID)
	return required(comment, err, domain.EntityIssueComment, commentID)
}

// ListComments returns the issue's comments in the order they were written.
func (s *IssueService) ListComments(ctx context.Context, repo domain.RepoKey, number int) ([]domain.IssueComment, error) {
	return s.comments.List(ctx, repo, number)
}

func (s *IssueService) UpdateComment(ctx context.Context, repo domain.RepoKey, number int, commentID, body string) (domain.IssueComment, error) {
	if _, err := s.GetComment(ctx, repo, number, commentID); err != nil {
		return domain.IssueComment{}, err
	}
	return s.comments.Update(ctx, repo, number, commentID, body)
}

func (s *IssueService) DeleteComment(ctx context.Context, repo domain.RepoKey, number int, commentID string) error {
	if _, err := s.GetComment(ctx, repo, number, commentID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, repo, number, commentID)
}
