package dynamodb

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/infrastructure/persistence/memory"
	"github-ddb-backend/internal/repository"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store *memory.Store
	clock *testClock
	repos *Repositories
}

var widgets = domain.RepoKey{Owner: "acme", RepoName: "widgets"}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return &fixture{
		store: store,
		clock: clock,
		repos: NewRepositories(store, zaptest.NewLogger(t), clock.Now),
	}
}

// seed creates users alice and bob, org acme and repository acme/widgets.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{"alice", "bob"} {
		_, err := f.repos.Users.Create(ctx, domain.User{Username: name})
		require.NoError(t, err)
	}
	_, err := f.repos.Organizations.Create(ctx, domain.Organization{OrgName: "acme"})
	require.NoError(t, err)
	_, err = f.repos.Repos.Create(ctx, domain.Repository{Owner: "acme", RepoName: "widgets"})
	require.NoError(t, err)
}

func (f *fixture) createIssue(t *testing.T, title string) domain.Issue {
	t.Helper()
	issue, err := f.repos.Issues.Create(context.Background(), domain.Issue{
		Owner: widgets.Owner, RepoName: widgets.RepoName, Title: title, Author: "alice",
	})
	require.NoError(t, err)
	return issue
}

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, field, ve.Field)
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("Should stamp timestamps on create", func(t *testing.T) {
		user, err := f.repos.Users.Create(ctx, domain.User{Username: "alice", Email: "alice@example.com"})
		require.NoError(t, err)
		assert.Equal(t, f.clock.Now(), user.CreatedAt)
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)

		got, err := f.repos.Users.Get(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user, *got)
	})

	t.Run("Should reject a duplicate user", func(t *testing.T) {
		_, err := f.repos.Users.Create(ctx, domain.User{Username: "alice"})
		var dup *apperrors.DuplicateEntityError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, EntityUser, dup.EntityType)
		assert.Equal(t, "alice", dup.Key)
	})

	t.Run("Should share the namespace between users and organizations", func(t *testing.T) {
		_, err := f.repos.Organizations.Create(ctx, domain.Organization{OrgName: "alice"})
		var dup *apperrors.DuplicateEntityError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, EntityOrganization, dup.EntityType)

		org, err := f.repos.Organizations.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Nil(t, org)
	})

	t.Run("Should return nil for an absent account", func(t *testing.T) {
		user, err := f.repos.Users.Get(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("Should update only supplied fields", func(t *testing.T) {
		f.clock.Advance(time.Minute)
		bio := "gopher"
		user, err := f.repos.Users.Update(ctx, "alice", domain.UserUpdate{Bio: &bio})
		require.NoError(t, err)
		assert.Equal(t, "gopher", user.Bio)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.True(t, user.UpdatedAt.After(user.CreatedAt))
	})

	t.Run("Should fail updating a missing account", func(t *testing.T) {
		bio := "x"
		_, err := f.repos.Users.Update(ctx, "nobody", domain.UserUpdate{Bio: &bio})
		var nf *apperrors.EntityNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, EntityUser, nf.EntityType)
		assert.Equal(t, "nobody", nf.Key)
	})

	t.Run("Should delete idempotently", func(t *testing.T) {
		require.NoError(t, f.repos.Users.Delete(ctx, "alice"))
		require.NoError(t, f.repos.Users.Delete(ctx, "alice"))
		user, err := f.repos.Users.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestRepoRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	t.Run("Should require an existing owner", func(t *testing.T) {
		_, err := f.repos.Repos.Create(ctx, domain.Repository{Owner: "ghost", RepoName: "x"})
		requireValidation(t, err, "owner")
	})

	t.Run("Should reject a duplicate repository", func(t *testing.T) {
		_, err := f.repos.Repos.Create(ctx, domain.Repository{Owner: "acme", RepoName: "widgets"})
		var dup *apperrors.DuplicateEntityError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, EntityRepository, dup.EntityType)
		assert.Equal(t, "acme/widgets", dup.Key)
	})

	t.Run("Should page through repositories by owner", func(t *testing.T) {
		for _, name := range []string{"a", "b", "c", "d"} {
			_, err := f.repos.Repos.Create(ctx, domain.Repository{Owner: "bob", RepoName: name})
			require.NoError(t, err)
		}

		var names []string
		page := repository.NewPageRequest(3, "")
		for pages := 0; ; pages++ {
			require.Less(t, pages, 5)
			res, err := f.repos.Repos.ListByOwner(ctx, "bob", page)
			require.NoError(t, err)
			for _, r := range res.Items {
				names = append(names, r.RepoName)
			}
			if !res.HasMore() {
				break
			}
			page.Cursor = res.NextCursor
		}
		assert.Equal(t, []string{"a", "b", "c", "d"}, names)
	})

	t.Run("Should reject a malformed cursor", func(t *testing.T) {
		_, err := f.repos.Repos.ListByOwner(ctx, "bob", repository.NewPageRequest(2, "%%%"))
		requireValidation(t, err, "cursor")
	})

	t.Run("Should report existence", func(t *testing.T) {
		ok, err := f.repos.Repos.Exists(ctx, widgets)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = f.repos.Repos.Exists(ctx, domain.RepoKey{Owner: "acme", RepoName: "missing"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should update repository settings", func(t *testing.T) {
		private := true
		repo, err := f.repos.Repos.Update(ctx, widgets, domain.RepositoryUpdate{IsPrivate: &private})
		require.NoError(t, err)
		assert.True(t, repo.IsPrivate)
	})
}

func TestIssueRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Should number concurrent creates uniquely", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		const writers = 20
		numbers := make(chan int, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				issue, err := f.repos.Issues.Create(ctx, domain.Issue{
					Owner: "acme", RepoName: "widgets", Title: "race", Author: "alice",
				})
				assert.NoError(t, err)
				numbers <- issue.IssueNumber
			}()
		}
		wg.Wait()
		close(numbers)

		var got []int
		for n := range numbers {
			got = append(got, n)
		}
		sort.Ints(got)
		for i, n := range got {
			assert.Equal(t, i+1, n)
		}

		issues, err := f.repos.Issues.List(ctx, widgets)
		require.NoError(t, err)
		assert.Len(t, issues, writers)
	})

	t.Run("Should reject an issue under a missing repository", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		_, err := f.repos.Issues.Create(ctx, domain.Issue{
			Owner: "acme", RepoName: "missing", Title: "T", Author: "alice",
		})
		requireValidation(t, err, "repository")

		current, err := f.repos.Sequences.Current(ctx, domain.RepoKey{Owner: "acme", RepoName: "missing"}, SequenceIssue)
		require.NoError(t, err)
		assert.Zero(t, current)
	})

	t.Run("Should default the status to open", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		issue := f.createIssue(t, "T")
		assert.Equal(t, domain.IssueOpen, issue.Status)
		assert.Equal(t, 1, issue.IssueNumber)
	})

	t.Run("Should apply a partial update", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		created, err := f.repos.Issues.Create(ctx, domain.Issue{
			Owner: "acme", RepoName: "widgets", Title: "Crash", Body: "stack trace", Author: "alice",
			Assignees: []string{"bob", "bob", ""}, Labels: []string{"bug"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, created.Assignees)

		f.clock.Advance(time.Hour)
		closed := domain.IssueClosed
		updated, err := f.repos.Issues.Update(ctx, widgets, created.IssueNumber, domain.IssueUpdate{Status: &closed})
		require.NoError(t, err)

		assert.Equal(t, domain.IssueClosed, updated.Status)
		assert.Equal(t, created.Title, updated.Title)
		assert.Equal(t, created.Body, updated.Body)
		assert.Equal(t, created.Assignees, updated.Assignees)
		assert.Equal(t, created.Labels, updated.Labels)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.Equal(t, created.UpdatedAt.Add(time.Hour), updated.UpdatedAt)

		open, err := f.repos.Issues.ListByStatus(ctx, widgets, domain.IssueOpen)
		require.NoError(t, err)
		assert.Empty(t, open)

		closedIssues, err := f.repos.Issues.ListByStatus(ctx, widgets, domain.IssueClosed)
		require.NoError(t, err)
		require.Len(t, closedIssues, 1)
		assert.Equal(t, updated, closedIssues[0])
	})

	t.Run("Should clear labels with an empty list", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)
		created, err := f.repos.Issues.Create(ctx, domain.Issue{
			Owner: "acme", RepoName: "widgets", Title: "T", Author: "alice", Labels: []string{"bug"},
		})
		require.NoError(t, err)

		none := []string{}
		updated, err := f.repos.Issues.Update(ctx, widgets, created.IssueNumber, domain.IssueUpdate{Labels: &none})
		require.NoError(t, err)
		assert.Nil(t, updated.Labels)
	})

	t.Run("Should reject an unknown status filter", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.repos.Issues.ListByStatus(ctx, widgets, "reopened")
		requireValidation(t, err, "status")
	})

	t.Run("Should fail updating a missing issue", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)
		title := "x"
		_, err := f.repos.Issues.Update(ctx, widgets, 999, domain.IssueUpdate{Title: &title})
		var nf *apperrors.EntityNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, EntityIssue, nf.EntityType)
		assert.Equal(t, "999", nf.Key)
	})

	t.Run("Should skip corrupt items when listing", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)
		good := f.createIssue(t, "good")
		bad := f.createIssue(t, "bad")

		_, err := f.store.Update(ctx, IssueKey(widgets, bad.IssueNumber), map[string]any{attrCreatedAt: "not a time"}, persistence.IfExists)
		require.NoError(t, err)

		issues, err := f.repos.Issues.List(ctx, widgets)
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, good.IssueNumber, issues[0].IssueNumber)

		_, err = f.repos.Issues.Get(ctx, widgets, bad.IssueNumber)
		assert.True(t, apperrors.IsStorage(err))
	})
}

func TestPullRequestRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	t.Run("Should number pull requests independently of issues", func(t *testing.T) {
		f.createIssue(t, "one")
		f.createIssue(t, "two")

		pr, err := f.repos.PullRequests.Create(ctx, domain.PullRequest{
			Owner: "acme", RepoName: "widgets", Title: "Fix", Author: "bob",
			SourceBranch: "fix", TargetBranch: "main",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, pr.PRNumber)
		assert.Equal(t, domain.PullRequestOpen, pr.Status)

		current, err := f.repos.Sequences.Current(ctx, widgets, SequenceIssue)
		require.NoError(t, err)
		assert.Equal(t, 2, current)
	})

	t.Run("Should not mistake comments for pull requests", func(t *testing.T) {
		_, err := f.repos.PRComments.Create(ctx, domain.PRComment{
			Owner: "acme", RepoName: "widgets", PRNumber: 1, Author: "alice", Body: "nice",
		})
		require.NoError(t, err)

		prs, err := f.repos.PullRequests.List(ctx, widgets)
		require.NoError(t, err)
		assert.Len(t, prs, 1)
	})

	t.Run("Should merge a pull request", func(t *testing.T) {
		merged := domain.PullRequestMerged
		sha := "deadbeef"
		pr, err := f.repos.PullRequests.Update(ctx, widgets, 1, domain.PullRequestUpdate{Status: &merged, MergeCommitSHA: &sha})
		require.NoError(t, err)
		assert.Equal(t, domain.PullRequestMerged, pr.Status)
		assert.Equal(t, "deadbeef", pr.MergeCommitSHA)

		listed, err := f.repos.PullRequests.ListByStatus(ctx, widgets, domain.PullRequestMerged)
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})

	t.Run("Should reject a pull request under a missing repository", func(t *testing.T) {
		_, err := f.repos.PullRequests.Create(ctx, domain.PullRequest{
			Owner: "acme", RepoName: "missing", Title: "Fix", Author: "bob",
			SourceBranch: "fix", TargetBranch: "main",
		})
		requireValidation(t, err, "repository")
	})
}

func TestCommentRepositories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	issue := f.createIssue(t, "T")

	t.Run("Should require the parent issue", func(t *testing.T) {
		_, err := f.repos.IssueComments.Create(ctx, domain.IssueComment{
			Owner: "acme", RepoName: "widgets", IssueNumber: 42, Author: "bob", Body: "?",
		})
		requireValidation(t, err, "issue")
	})

	t.Run("Should require the parent pull request", func(t *testing.T) {
		_, err := f.repos.PRComments.Create(ctx, domain.PRComment{
			Owner: "acme", RepoName: "widgets", PRNumber: 42, Author: "bob", Body: "?",
		})
		requireValidation(t, err, "pullrequest")
	})

	t.Run("Should list comments in creation order", func(t *testing.T) {
		var ids []string
		for _, body := range []string{"first", "second", "third"} {
			c, err := f.repos.IssueComments.Create(ctx, domain.IssueComment{
				Owner: "acme", RepoName: "widgets", IssueNumber: issue.IssueNumber, Author: "bob", Body: body,
			})
			require.NoError(t, err)
			require.NotEmpty(t, c.CommentID)
			ids = append(ids, c.CommentID)
		}

		comments, err := f.repos.IssueComments.List(ctx, widgets, issue.IssueNumber)
		require.NoError(t, err)
		require.Len(t, comments, 3)
		for i, c := range comments {
			assert.Equal(t, ids[i], c.CommentID)
		}

		issues, err := f.repos.Issues.List(ctx, widgets)
		require.NoError(t, err)
		assert.Len(t, issues, 1)
	})

	t.Run("Should edit a comment body", func(t *testing.T) {
		comments, err := f.repos.IssueComments.List(ctx, widgets, issue.IssueNumber)
		require.NoError(t, err)
		require.NotEmpty(t, comments)

		edited, err := f.repos.IssueComments.Update(ctx, widgets, issue.IssueNumber, comments[0].CommentID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", edited.Body)
		assert.Equal(t, comments[0].Author, edited.Author)

		_, err = f.repos.IssueComments.Update(ctx, widgets, issue.IssueNumber, comments[0].CommentID, "")
		requireValidation(t, err, "body")
	})
}

func TestReactionRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	issue := f.createIssue(t, "T")
	target := domain.IssueTarget(issue.IssueNumber)

	react := func(user, emoji string, target domain.Target) error {
		_, err := f.repos.Reactions.Create(ctx, domain.Reaction{
			Owner: "acme", RepoName: "widgets", Target: target, User: user, Emoji: emoji,
		})
		return err
	}

	t.Run("Should reject a duplicate reaction", func(t *testing.T) {
		require.NoError(t, react("bob", "👍", target))
		err := react("bob", "👍", target)
		var dup *apperrors.DuplicateEntityError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, EntityReaction, dup.EntityType)
	})

	t.Run("Should reject a reaction on a missing target", func(t *testing.T) {
		requireValidation(t, react("bob", "👍", domain.IssueTarget(99)), "target")
		requireValidation(t, react("bob", "👍", domain.IssueCommentTarget(issue.IssueNumber, "nope")), "target")
	})

	t.Run("Should react to a comment", func(t *testing.T) {
		comment, err := f.repos.IssueComments.Create(ctx, domain.IssueComment{
			Owner: "acme", RepoName: "widgets", IssueNumber: issue.IssueNumber, Author: "alice", Body: "hi",
		})
		require.NoError(t, err)
		require.NoError(t, react("bob", "🎉", comment.Target()))

		got, err := f.repos.Reactions.Get(ctx, widgets, comment.Target(), "bob", "🎉")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, comment.Target(), got.Target)
	})

	t.Run("Should filter and limit by target", func(t *testing.T) {
		require.NoError(t, react("alice", "👍", target))
		require.NoError(t, react("alice", "❤️", target))

		all, err := f.repos.Reactions.ListByTarget(ctx, widgets, target, repository.ReactionFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		thumbs, err := f.repos.Reactions.ListByTarget(ctx, widgets, target, repository.ReactionFilter{Emoji: "👍"})
		require.NoError(t, err)
		assert.Len(t, thumbs, 2)

		limited, err := f.repos.Reactions.ListByTarget(ctx, widgets, target, repository.ReactionFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("Should delete a reaction", func(t *testing.T) {
		require.NoError(t, f.repos.Reactions.Delete(ctx, widgets, target, "bob", "👍"))
		require.NoError(t, react("bob", "👍", target))
	})
}

func TestRelationRepositories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	gadgets := domain.RepoKey{Owner: "bob", RepoName: "widgets"}
	_, err := f.repos.Repos.Create(ctx, domain.Repository{Owner: gadgets.Owner, RepoName: gadgets.RepoName})
	require.NoError(t, err)

	fork := domain.Fork{OriginalOwner: "acme", OriginalRepo: "widgets", ForkOwner: "bob", ForkRepo: "widgets"}

	t.Run("Should record a fork once", func(t *testing.T) {
		_, err := f.repos.Forks.Create(ctx, fork)
		require.NoError(t, err)

		_, err = f.repos.Forks.Create(ctx, fork)
		var dup *apperrors.DuplicateEntityError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, EntityFork, dup.EntityType)
		assert.Equal(t, "acme/widgets->bob/widgets", dup.Key)

		forks, err := f.repos.Forks.ListForks(ctx, widgets)
		require.NoError(t, err)
		require.Len(t, forks, 1)
		assert.Equal(t, gadgets, forks[0].Copy())
	})

	t.Run("Should require both fork endpoints", func(t *testing.T) {
		missing := fork
		missing.ForkRepo = "nothing"
		_, err := f.repos.Forks.Create(ctx, missing)
		requireValidation(t, err, "fork_repo")

		self := fork
		self.ForkOwner = "acme"
		_, err = f.repos.Forks.Create(ctx, self)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("Should star once and list from both sides", func(t *testing.T) {
		star := domain.Star{Username: "alice", RepoOwner: "acme", RepoName: "widgets"}
		_, err := f.repos.Stars.Create(ctx, star)
		require.NoError(t, err)

		_, err = f.repos.Stars.Create(ctx, star)
		assert.True(t, apperrors.IsDuplicate(err))

		_, err = f.repos.Stars.Create(ctx, domain.Star{Username: "bob", RepoOwner: "acme", RepoName: "widgets"})
		require.NoError(t, err)

		starred, err := f.repos.Stars.IsStarred(ctx, "alice", widgets)
		require.NoError(t, err)
		assert.True(t, starred)

		byUser, err := f.repos.Stars.ListByUser(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, byUser, 1)

		gazers, err := f.repos.Stars.ListStargazers(ctx, widgets)
		require.NoError(t, err)
		require.Len(t, gazers, 2)
		assert.Equal(t, "alice", gazers[0].Username)
		assert.Equal(t, "bob", gazers[1].Username)
	})

	t.Run("Should not let an organization star", func(t *testing.T) {
		_, err := f.repos.Stars.Create(ctx, domain.Star{Username: "acme", RepoOwner: "acme", RepoName: "widgets"})
		requireValidation(t, err, "username")
	})

	t.Run("Should unstar", func(t *testing.T) {
		require.NoError(t, f.repos.Stars.Delete(ctx, "alice", widgets))
		starred, err := f.repos.Stars.IsStarred(ctx, "alice", widgets)
		require.NoError(t, err)
		assert.False(t, starred)
	})
}
