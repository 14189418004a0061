package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence/dynamodb"
	"github-ddb-backend/internal/infrastructure/persistence/memory"
	"github-ddb-backend/internal/infrastructure/persistence/mocks"
	"github-ddb-backend/internal/repository"
	"github-ddb-backend/internal/service"
)

var widgets = domain.RepoKey{Owner: "acme", RepoName: "widgets"}

type fixture struct {
	spy          *mocks.SpyStore
	accounts     *service.AccountService
	repositories *service.RepositoryService
	issues       *service.IssueService
	prs          *service.PullRequestService
	reactions    *service.ReactionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	spy := mocks.NewSpyStore(memory.NewStore())
	repos := dynamodb.NewRepositories(spy, logger, nil)

	f := &fixture{
		spy:          spy,
		accounts:     service.NewAccountService(repos.Users, repos.Organizations, logger),
		repositories: service.NewRepositoryService(repos.Repos, repos.Forks, repos.Stars, logger),
		issues:       service.NewIssueService(repos.Issues, repos.IssueComments, logger),
		prs:          service.NewPullRequestService(repos.PullRequests, repos.PRComments, logger),
		reactions:    service.NewReactionService(repos.Reactions, repos.Targets, logger),
	}

	ctx := context.Background()
	for _, name := range []string{"alice", "bob"} {
		_, err := f.accounts.CreateUser(ctx, domain.User{Username: name, Email: name + "@example.com"})
		require.NoError(t, err)
	}
	_, err := f.accounts.CreateOrganization(ctx, domain.Organization{OrgName: "acme"})
	require.NoError(t, err)
	_, err = f.repositories.CreateRepository(ctx, domain.Repository{Owner: "acme", RepoName: "widgets"})
	require.NoError(t, err)

	spy.Reset()
	return f
}

func (f *fixture) createIssue(t *testing.T, title string) domain.Issue {
	t.Helper()
	issue, err := f.issues.CreateIssue(context.Background(), domain.Issue{
		Owner: widgets.Owner, RepoName: widgets.RepoName, Title: title, Author: "alice",
	})
	require.NoError(t, err)
	return issue
}

func requireNotFound(t *testing.T, err error, entityType, key string) {
	t.Helper()
	var notFound *apperrors.EntityNotFoundError
	require.True(t, errors.As(err, &notFound), "expected EntityNotFoundError, got %v", err)
	assert.Equal(t, entityType, notFound.EntityType)
	assert.Equal(t, key, notFound.Key)
}

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	var validation *apperrors.ValidationError
	require.True(t, errors.As(err, &validation), "expected ValidationError, got %v", err)
	assert.Equal(t, field, validation.Field)
}

func TestIssueService(t *testing.T) {
	ctx := context.Background()

	t.Run("Should number concurrent issues without duplicates", func(t *testing.T) {
		f := newFixture(t)
		var wg sync.WaitGroup
		numbers := make([]int, 2)
		for i := range numbers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				issue, err := f.issues.CreateIssue(ctx, domain.Issue{
					Owner: widgets.Owner, RepoName: widgets.RepoName, Title: "race", Author: "bob",
				})
				assert.NoError(t, err)
				numbers[i] = issue.IssueNumber
			}(i)
		}
		wg.Wait()
		sort.Ints(numbers)
		assert.Equal(t, []int{1, 2}, numbers)
	})

	t.Run("Should reject an issue under a missing repository", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.issues.CreateIssue(ctx, domain.Issue{
			Owner: "acme", RepoName: "missing", Title: "lost", Author: "alice",
		})
		requireValidation(t, err, "repository")
	})

	t.Run("Should not delete a missing issue", func(t *testing.T) {
		f := newFixture(t)
		err := f.issues.DeleteIssue(ctx, widgets, 999)
		requireNotFound(t, err, "IssueEntity", "999")
		assert.Equal(t, 0, f.spy.Calls(mocks.MethodDelete))
	})

	t.Run("Should not update a missing issue", func(t *testing.T) {
		f := newFixture(t)
		closed := domain.IssueClosed
		_, err := f.issues.UpdateIssue(ctx, widgets, 5, domain.IssueUpdate{Status: &closed})
		requireNotFound(t, err, "IssueEntity", "5")
		assert.Equal(t, 0, f.spy.Calls(mocks.MethodUpdate))
	})

	t.Run("Should close an issue and filter by status", func(t *testing.T) {
		f := newFixture(t)
		first := f.createIssue(t, "first")
		f.createIssue(t, "second")

		closed := domain.IssueClosed
		updated, err := f.issues.UpdateIssue(ctx, widgets, first.IssueNumber, domain.IssueUpdate{Status: &closed})
		require.NoError(t, err)
		assert.Equal(t, "first", updated.Title)
		assert.Equal(t, domain.IssueClosed, updated.Status)

		open, err := f.issues.ListIssues(ctx, widgets, domain.IssueOpen)
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, "second", open[0].Title)

		all, err := f.issues.ListIssues(ctx, widgets, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("Should skip the write for an empty update", func(t *testing.T) {
		f := newFixture(t)
		issue := f.createIssue(t, "unchanged")
		f.spy.Reset()

		got, err := f.issues.UpdateIssue(ctx, widgets, issue.IssueNumber, domain.IssueUpdate{})
		require.NoError(t, err)
		assert.Equal(t, issue.Title, got.Title)
		assert.Equal(t, 0, f.spy.Calls(mocks.MethodUpdate))
	})

	t.Run("Should manage comments", func(t *testing.T) {
		f := newFixture(t)
		issue := f.createIssue(t, "discussed")

		c1, err := f.issues.AddComment(ctx, widgets, issue.IssueNumber, "bob", "first")
		require.NoError(t, err)
		c2, err := f.issues.AddComment(ctx, widgets, issue.IssueNumber, "alice", "second")
		require.NoError(t, err)

		comments, err := f.issues.ListComments(ctx, widgets, issue.IssueNumber)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, c1.CommentID, comments[0].CommentID)
		assert.Equal(t, c2.CommentID, comments[1].CommentID)

		edited, err := f.issues.UpdateComment(ctx, widgets, issue.IssueNumber, c1.CommentID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", edited.Body)

		require.NoError(t, f.issues.DeleteComment(ctx, widgets, issue.IssueNumber, c2.CommentID))
		err = f.issues.DeleteComment(ctx, widgets, issue.IssueNumber, c2.CommentID)
		requireNotFound(t, err, "IssueCommentEntity", c2.CommentID)

		_, err = f.issues.AddComment(ctx, widgets, 42, "bob", "orphan")
		requireValidation(t, err, "issue")
	})
}

func TestPullRequestService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pr, err := f.prs.CreatePullRequest(ctx, domain.PullRequest{
		Owner: widgets.Owner, RepoName: widgets.RepoName, Title: "Add gears", Author: "bob",
		Status: domain.PullRequestOpen, SourceBranch: "feature/gears", TargetBranch: "main",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, pr.PRNumber)

	// Issue and pull request numbering are independent.
	issue := f.createIssue(t, "unrelated")
	assert.Equal(t, 1, issue.IssueNumber)

	merged, err := f.prs.MergePullRequest(ctx, widgets, pr.PRNumber, "a1b2c3d4e5f6")
	require.NoError(t, err)
	assert.Equal(t, domain.PullRequestMerged, merged.Status)
	assert.Equal(t, "a1b2c3d4e5f6", merged.MergeCommitSHA)

	_, err = f.prs.MergePullRequest(ctx, widgets, pr.PRNumber, "a1b2c3d4e5f6")
	requireValidation(t, err, "status")

	list, err := f.prs.ListPullRequests(ctx, widgets, domain.PullRequestMerged)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	comment, err := f.prs.AddComment(ctx, widgets, pr.PRNumber, "alice", "LGTM")
	require.NoError(t, err)
	got, err := f.prs.GetComment(ctx, widgets, pr.PRNumber, comment.CommentID)
	require.NoError(t, err)
	assert.Equal(t, "LGTM", got.Body)

	f.spy.Reset()
	err = f.prs.DeletePullRequest(ctx, widgets, 7)
	requireNotFound(t, err, "PullRequestEntity", "7")
	assert.Equal(t, 0, f.spy.Calls(mocks.MethodDelete))

	require.NoError(t, f.prs.DeletePullRequest(ctx, widgets, pr.PRNumber))
	_, err = f.prs.GetPullRequest(ctx, widgets, pr.PRNumber)
	requireNotFound(t, err, "PullRequestEntity", "1")
}

func TestReactionService(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject a duplicate reaction", func(t *testing.T) {
		f := newFixture(t)
		issue := f.createIssue(t, "popular")
		ref := domain.TargetRef{IssueNumber: &issue.IssueNumber}

		_, err := f.reactions.AddReaction(ctx, widgets, ref, "bob", "👍")
		require.NoError(t, err)
		_, err = f.reactions.AddReaction(ctx, widgets, ref, "bob", "👍")

		var dup *apperrors.DuplicateEntityError
		require.True(t, errors.As(err, &dup), "expected DuplicateEntityError, got %v", err)
		assert.Equal(t, "ReactionEntity", dup.EntityType)
	})

	t.Run("Should react to comments and filter by emoji", func(t *testing.T) {
		f := newFixture(t)
		issue := f.createIssue(t, "thread")
		comment, err := f.issues.AddComment(ctx, widgets, issue.IssueNumber, "alice", "hello")
		require.NoError(t, err)
		ref := domain.TargetRef{IssueNumber: &issue.IssueNumber, CommentID: comment.CommentID}

		for _, r := range []struct{ user, emoji string }{{"alice", "🎉"}, {"bob", "🎉"}, {"bob", "👀"}} {
			_, err := f.reactions.AddReaction(ctx, widgets, ref, r.user, r.emoji)
			require.NoError(t, err)
		}

		party, err := f.reactions.ListReactions(ctx, widgets, ref, repository.ReactionFilter{Emoji: "🎉"})
		require.NoError(t, err)
		assert.Len(t, party, 2)

		limited, err := f.reactions.ListReactions(ctx, widgets, ref, repository.ReactionFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		// Reactions on the parent issue are a different target.
		onIssue, err := f.reactions.ListReactions(ctx, widgets, domain.TargetRef{IssueNumber: &issue.IssueNumber}, repository.ReactionFilter{})
		require.NoError(t, err)
		assert.Empty(t, onIssue)
	})

	t.Run("Should reject ambiguous or missing targets", func(t *testing.T) {
		f := newFixture(t)
		one := 1
		_, err := f.reactions.AddReaction(ctx, widgets, domain.TargetRef{IssueNumber: &one, PRNumber: &one}, "bob", "👍")
		requireValidation(t, err, "target")

		_, err = f.reactions.AddReaction(ctx, widgets, domain.TargetRef{}, "bob", "👍")
		requireValidation(t, err, "target")

		_, err = f.reactions.AddReaction(ctx, widgets, domain.TargetRef{PRNumber: &one}, "bob", "👍")
		requireValidation(t, err, "target")
		assert.Equal(t, 0, f.spy.Calls(mocks.MethodPut))
	})

	t.Run("Should not delete a missing reaction", func(t *testing.T) {
		f := newFixture(t)
		issue := f.createIssue(t, "quiet")
		f.spy.Reset()

		err := f.reactions.RemoveReaction(ctx, widgets, domain.TargetRef{IssueNumber: &issue.IssueNumber}, "bob", "👍")
		requireNotFound(t, err, "ReactionEntity", "acme/widgets/issue/1/bob/👍")
		assert.Equal(t, 0, f.spy.Calls(mocks.MethodDelete))
	})
}

func TestAccountService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	bio := "gardener"
	user, err := f.accounts.UpdateUser(ctx, "alice", domain.UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "gardener", user.Bio)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = f.accounts.UpdateUser(ctx, "carol", domain.UserUpdate{Bio: &bio})
	requireNotFound(t, err, "UserEntity", "carol")

	_, err = f.accounts.CreateOrganization(ctx, domain.Organization{OrgName: "alice"})
	assert.True(t, apperrors.IsDuplicate(err), "usernames and org names share a namespace")

	require.NoError(t, f.accounts.DeleteUser(ctx, "bob"))
	_, err = f.accounts.GetUser(ctx, "bob")
	requireNotFound(t, err, "UserEntity", "bob")

	f.spy.Reset()
	err = f.accounts.DeleteOrganization(ctx, "initech")
	requireNotFound(t, err, "OrganizationEntity", "initech")
	assert.Equal(t, 0, f.spy.Calls(mocks.MethodDelete))
}

func TestRepositoryService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fork := domain.RepoKey{Owner: "alice", RepoName: "widgets"}

	_, err := f.repositories.CreateRepository(ctx, domain.Repository{Owner: fork.Owner, RepoName: fork.RepoName})
	require.NoError(t, err)

	t.Run("Should record forks", func(t *testing.T) {
		_, err := f.repositories.ForkRepository(ctx, widgets, fork)
		require.NoError(t, err)

		forks, err := f.repositories.ListForks(ctx, widgets)
		require.NoError(t, err)
		require.Len(t, forks, 1)
		assert.Equal(t, fork, forks[0].Copy())

		_, err = f.repositories.ForkRepository(ctx, widgets, domain.RepoKey{Owner: "bob", RepoName: "nothing"})
		requireValidation(t, err, "fork_repo")

		f.spy.Reset()
		err = f.repositories.DeleteFork(ctx, fork, widgets)
		requireNotFound(t, err, "ForkEntity", "alice/widgets->acme/widgets")
		assert.Equal(t, 0, f.spy.Calls(mocks.MethodDelete))
	})

	t.Run("Should star and unstar", func(t *testing.T) {
		_, err := f.repositories.StarRepository(ctx, "bob", widgets)
		require.NoError(t, err)

		starred, err := f.repositories.IsStarred(ctx, "bob", widgets)
		require.NoError(t, err)
		assert.True(t, starred)

		gazers, err := f.repositories.ListStargazers(ctx, widgets)
		require.NoError(t, err)
		require.Len(t, gazers, 1)
		assert.Equal(t, "bob", gazers[0].Username)

		_, err = f.repositories.StarRepository(ctx, "acme", widgets)
		requireValidation(t, err, "username")

		require.NoError(t, f.repositories.UnstarRepository(ctx, "bob", widgets))
		err = f.repositories.UnstarRepository(ctx, "bob", widgets)
		requireNotFound(t, err, "StarEntity", "bob->acme/widgets")
	})

	t.Run("Should page through an owner's repositories", func(t *testing.T) {
		page, err := f.repositories.ListRepositories(ctx, "acme", repository.NewPageRequest(10, ""))
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.False(t, page.HasMore())

		desc := "sprockets too"
		updated, err := f.repositories.UpdateRepository(ctx, widgets, domain.RepositoryUpdate{Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, desc, updated.Description)

		_, err = f.repositories.GetRepository(ctx, domain.RepoKey{Owner: "acme", RepoName: "gone"})
		requireNotFound(t, err, "RepositoryEntity", "acme/gone")
	})
}
