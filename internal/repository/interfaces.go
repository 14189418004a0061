// Package repository defines the data-access ports the service layer depends
// on, one interface per entity kind.
//
// Conventions shared by every interface:
//   - Get returns (nil, nil) when the item is absent. Absence is not an error
//     at this layer; services decide whether it is one.
//   - Create fails with *DuplicateEntityError when the derived key is taken
//     and with *ValidationError when a referenced entity is missing.
//   - Update merges only the supplied fields, refreshes updated_at and fails
//     with *EntityNotFoundError when the item is gone.
//   - Delete is unconditional and succeeds for absent items.
//   - Store failures surface as *StorageError; nothing is retried.
package repository

import (
	"context"

	"github-ddb-backend/internal/domain"
)

// UserRepository manages users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Get(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, username string, changes domain.UserUpdate) (domain.User, error)
	Delete(ctx context.Context, username string) error
}

// OrganizationRepository manages organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org domain.Organization) (domain.Organization, error)
	Get(ctx context.Context, orgName string) (*domain.Organization, error)
	Update(ctx context.Context, orgName string, changes domain.OrganizationUpdate) (domain.Organization, error)
	Delete(ctx context.Context, orgName string) error
}

// RepoRepository manages hosted repositories.
type RepoRepository interface {
	Create(ctx context.Context, repo domain.Repository) (domain.Repository, error)
	Get(ctx context.Context, key domain.RepoKey) (*domain.Repository, error)
	Exists(ctx context.Context, key domain.RepoKey) (bool, error)
	ListByOwner(ctx context.Context, owner string, page PageRequest) (Page[domain.Repository], error)
	Update(ctx context.Context, key domain.RepoKey, changes domain.RepositoryUpdate) (domain.Repository, error)
	Delete(ctx context.Context, key domain.RepoKey) error
}

// IssueRepository manages issues. Create assigns the next issue number of
// the repository.
type IssueRepository interface {
	Create(ctx context.Context, issue domain.Issue) (domain.Issue, error)
	Get(ctx context.Context, repo domain.RepoKey, number int) (*domain.Issue, error)
	List(ctx context.Context, repo domain.RepoKey) ([]domain.Issue, error)
	ListByStatus(ctx context.Context, repo domain.RepoKey, status domain.IssueStatus) ([]domain.Issue, error)
	Update(ctx context.Context, repo domain.RepoKey, number int, changes domain.IssueUpdate) (domain.Issue, error)
	Delete(ctx context.Context, repo domain.RepoKey, number int) error
}

// PullRequestRepository manages pull requests. Create assigns the next pull
// request number of the repository.
type PullRequestRepository interface {
	Create(ctx context.Context, pr domain.PullRequest) (domain.PullRequest, error)
	Get(ctx context.Context, repo domain.RepoKey, number int) (*domain.PullRequest, error)
	List(ctx context.Context, repo domain.RepoKey) ([]domain.PullRequest, error)
	ListByStatus(ctx context.Context, repo domain.RepoKey, status domain.PullRequestStatus) ([]domain.PullRequest, error)
	Update(ctx context.Context, repo domain.RepoKey, number int, changes domain.PullRequestUpdate) (domain.PullRequest, error)
	Delete(ctx context.Context, repo domain.RepoKey, number int) error
}

// IssueCommentRepository manages comments on issues.
type IssueCommentRepository interface {
	Create(ctx context.Context, comment domain.IssueComment) (domain.IssueComment, error)
	Get(ctx context.Context, repo domain.RepoKey, issueNumber int, commentID string) (*domain.IssueComment, error)
	List(ctx context.Context, repo domain.RepoKey, issueNumber int) ([]domain.IssueComment, error)
	Update(ctx context.Context, repo domain.RepoKey, issueNumber int, commentID, body string) (domain.IssueComment, error)
	Delete(ctx context.Context, repo domain.RepoKey, issueNumber int, commentID string) error
}

// PRCommentRepository manages comments on pull requests.
type PRCommentRepository interface {
	Create(ctx context.Context, comment domain.PRComment) (domain.PRComment, error)
	Get(ctx context.Context, repo domain.RepoKey, prNumber int, commentID string) (*domain.PRComment, error)
	List(ctx context.Context, repo domain.RepoKey, prNumber int) ([]domain.PRComment, error)
	Update(ctx context.Context, repo domain.RepoKey, prNumber int, commentID, body string) (domain.PRComment, error)
	Delete(ctx context.Context, repo domain.RepoKey, prNumber int, commentID string) error
}

// ReactionFilter narrows a reaction listing. Filtering happens after the
// target's reactions are read, which is fine for per-item fan-out.
type ReactionFilter struct {
	Emoji string // empty matches every emoji
	Limit int    // 0 is unlimited
}

// ReactionRepository manages reactions.
type ReactionRepository interface {
	Create(ctx context.Context, reaction domain.Reaction) (domain.Reaction, error)
	Get(ctx context.Context, repo domain.RepoKey, target domain.Target, user, emoji string) (*domain.Reaction, error)
	ListByTarget(ctx context.Context, repo domain.RepoKey, target domain.Target, filter ReactionFilter) ([]domain.Reaction, error)
	Delete(ctx context.Context, repo domain.RepoKey, target domain.Target, user, emoji string) error
}

// ForkRepository manages fork relations.
type ForkRepository interface {
	Create(ctx context.Context, fork domain.Fork) (domain.Fork, error)
	Get(ctx context.Context, original, fork domain.RepoKey) (*domain.Fork, error)
	ListForks(ctx context.Context, original domain.RepoKey) ([]domain.Fork, error)
	Delete(ctx context.Context, original, fork domain.RepoKey) error
}

// StarRepository manages stars.
type StarRepository interface {
	Create(ctx context.Context, star domain.Star) (domain.Star, error)
	Get(ctx context.Context, username string, repo domain.RepoKey) (*domain.Star, error)
	IsStarred(ctx context.Context, username string, repo domain.RepoKey) (bool, error)
	ListByUser(ctx context.Context, username string) ([]domain.Star, error)
	ListStargazers(ctx context.Context, repo domain.RepoKey) ([]domain.Star, error)
	Delete(ctx context.Context, username string, repo domain.RepoKey) error
}

// SequenceAllocator issues per-repository sequence numbers.
type SequenceAllocator interface {
	// Next returns the next value of the named sequence, starting at 1.
	Next(ctx context.Context, scope domain.RepoKey, name string) (int, error)
	// Current returns the last issued value without consuming one.
	Current(ctx context.Context, scope domain.RepoKey, name string) (int, error)
}

// TargetResolver turns caller addressing into a Target and checks that the
// addressed entity exists.
type TargetResolver interface {
	Resolve(ref domain.TargetRef) (domain.Target, error)
	Exists(ctx context.Context, repo domain.RepoKey, target domain.Target) (bool, error)
}
