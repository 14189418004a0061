package dynamodb

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
)

var (
	created = time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	updated = time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)
)

func roundTrip[T any](t *testing.T, codec EntityCodec[T], entity T) persistence.Item {
	t.Helper()
	item, err := codec.ToItem(entity)
	require.NoError(t, err)
	assert.Equal(t, codec.ItemType(), itemType(item))

	key := codec.KeyOf(entity)
	assert.Equal(t, StringAttr(key.PartitionKey), item[persistence.AttrPK])
	assert.Equal(t, StringAttr(key.SortKey), item[persistence.AttrSK])

	decoded, err := codec.ParseItem(item)
	require.NoError(t, err)
	assert.Equal(t, entity, decoded)
	return item
}

func TestCodecs_RoundTrip(t *testing.T) {
	t.Run("User with and without optional fields", func(t *testing.T) {
		roundTrip[domain.User](t, UserCodec{}, domain.User{Username: "alice", CreatedAt: created, UpdatedAt: updated})
		roundTrip[domain.User](t, UserCodec{}, domain.User{
			Username: "alice", Email: "alice@example.com", Bio: "hi", PaymentPlanID: "pro",
			CreatedAt: created, UpdatedAt: updated,
		})
	})

	t.Run("Organization", func(t *testing.T) {
		roundTrip[domain.Organization](t, OrganizationCodec{}, domain.Organization{
			OrgName: "acme", Description: "Acme Corp", CreatedAt: created, UpdatedAt: updated,
		})
	})

	t.Run("Repository indexes by owner", func(t *testing.T) {
		item := roundTrip[domain.Repository](t, RepositoryCodec{}, domain.Repository{
			Owner: "acme", RepoName: "widgets", IsPrivate: true, Language: "Go",
			CreatedAt: created, UpdatedAt: updated,
		})
		assert.Equal(t, StringAttr("ACCOUNT#acme"), item[persistence.AttrGSI3PK])
		assert.Equal(t, StringAttr("REPO#widgets"), item[persistence.AttrGSI3SK])
	})

	t.Run("Issue keeps lists and indexes by status", func(t *testing.T) {
		item := roundTrip[domain.Issue](t, IssueCodec{}, domain.Issue{
			Owner: "acme", RepoName: "widgets", IssueNumber: 7, Title: "Broken", Status: domain.IssueClosed,
			Author: "alice", Assignees: []string{"bob"}, Labels: []string{"bug", "p1"},
			CreatedAt: created, UpdatedAt: updated,
		})
		assert.Equal(t, StringAttr("REPO#acme#widgets"), item[persistence.AttrPK])
		assert.Equal(t, StringAttr("ISSUE#0000000007"), item[persistence.AttrSK])
		assert.Equal(t, StringAttr("ISSUE#acme#widgets"), item[persistence.AttrGSI1PK])
		assert.Equal(t, StringAttr("ISSUE#CLOSED#0000000007"), item[persistence.AttrGSI1SK])
		assert.IsType(t, &types.AttributeValueMemberN{}, item["IssueNumber"])
	})

	t.Run("Issue without lists", func(t *testing.T) {
		roundTrip[domain.Issue](t, IssueCodec{}, domain.Issue{
			Owner: "acme", RepoName: "widgets", IssueNumber: 1, Title: "T", Status: domain.IssueOpen,
			Author: "alice", CreatedAt: created, UpdatedAt: updated,
		})
	})

	t.Run("PullRequest", func(t *testing.T) {
		roundTrip[domain.PullRequest](t, PullRequestCodec{}, domain.PullRequest{
			Owner: "acme", RepoName: "widgets", PRNumber: 3, Title: "Fix", Status: domain.PullRequestMerged,
			Author: "bob", SourceBranch: "fix/thing", TargetBranch: "main", MergeCommitSHA: "abc1234",
			CreatedAt: created, UpdatedAt: updated,
		})
	})

	t.Run("Comments", func(t *testing.T) {
		item := roundTrip[domain.IssueComment](t, IssueCommentCodec{}, domain.IssueComment{
			Owner: "acme", RepoName: "widgets", IssueNumber: 2, CommentID: "c1", Author: "bob", Body: "+1",
			CreatedAt: created, UpdatedAt: updated,
		})
		assert.Equal(t, StringAttr("ISSUECOMMENT#0000000002#c1"), item[persistence.AttrSK])

		roundTrip[domain.PRComment](t, PRCommentCodec{}, domain.PRComment{
			Owner: "acme", RepoName: "widgets", PRNumber: 2, CommentID: "c1", Author: "bob", Body: "lgtm",
			CreatedAt: created, UpdatedAt: updated,
		})
	})

	t.Run("Reaction on every target kind", func(t *testing.T) {
		for _, target := range []domain.Target{
			domain.IssueTarget(1),
			domain.PullRequestTarget(2),
			domain.IssueCommentTarget(3, "0190a1b2-c3d4"),
			domain.PRCommentTarget(4, "abc"),
		} {
			roundTrip[domain.Reaction](t, ReactionCodec{}, domain.Reaction{
				Owner: "acme", RepoName: "widgets", Target: target, User: "bob", Emoji: "👍",
				CreatedAt: created, UpdatedAt: updated,
			})
		}
	})

	t.Run("Fork and Star", func(t *testing.T) {
		roundTrip[domain.Fork](t, ForkCodec{}, domain.Fork{
			OriginalOwner: "acme", OriginalRepo: "widgets", ForkOwner: "bob", ForkRepo: "widgets",
			CreatedAt: created, UpdatedAt: updated,
		})
		item := roundTrip[domain.Star](t, StarCodec{}, domain.Star{
			Username: "bob", RepoOwner: "acme", RepoName: "widgets", CreatedAt: created, UpdatedAt: updated,
		})
		assert.Equal(t, StringAttr("REPO#acme#widgets"), item[persistence.AttrGSI2PK])
		assert.Equal(t, StringAttr("STAR#bob"), item[persistence.AttrGSI2SK])
	})
}

func TestCodecs_Rejects(t *testing.T) {
	t.Run("Should validate before encoding", func(t *testing.T) {
		_, err := UserCodec{}.ToItem(domain.User{Username: "bad#name"})
		var ve *apperrors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "username", ve.Field)
	})

	t.Run("Should require an assigned issue number", func(t *testing.T) {
		_, err := IssueCodec{}.ToItem(domain.Issue{
			Owner: "acme", RepoName: "widgets", Title: "T", Status: domain.IssueOpen, Author: "alice",
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("Should report a corrupt timestamp as a storage error", func(t *testing.T) {
		item, err := UserCodec{}.ToItem(domain.User{Username: "alice", CreatedAt: created, UpdatedAt: updated})
		require.NoError(t, err)
		item[attrCreatedAt] = StringAttr("yesterday")

		_, err = UserCodec{}.ParseItem(item)
		assert.True(t, apperrors.IsStorage(err))
		assert.False(t, apperrors.IsRetryable(err))
	})

	t.Run("Should report an unknown stored status", func(t *testing.T) {
		item, err := IssueCodec{}.ToItem(domain.Issue{
			Owner: "acme", RepoName: "widgets", IssueNumber: 1, Title: "T", Status: domain.IssueOpen,
			Author: "alice", CreatedAt: created, UpdatedAt: updated,
		})
		require.NoError(t, err)
		item["Status"] = StringAttr("reopened")

		_, err = IssueCodec{}.ParseItem(item)
		assert.True(t, apperrors.IsStorage(err))
	})
}

func TestKeys(t *testing.T) {
	repo := domain.RepoKey{Owner: "acme", RepoName: "widgets"}

	assert.Equal(t, persistence.Key{PartitionKey: "ACCOUNT#alice", SortKey: "ACCOUNT#alice"}, AccountKey("alice"))
	assert.Equal(t, persistence.Key{PartitionKey: "COUNTER#acme#widgets", SortKey: "SEQUENCE#issue"}, CounterKey(repo, SequenceIssue))
	assert.Equal(t, "PR#0000000012", PullRequestKey(repo, 12).SortKey)
	assert.Equal(t, "REACTION#issuecomment#3-c9#bob#👍", ReactionKey(repo, domain.IssueCommentTarget(3, "c9"), "bob", "👍").SortKey)
	assert.Equal(t, persistence.Key{PartitionKey: "REPO#acme#widgets", SortKey: "FORK#bob#gadgets"},
		ForkKey(repo, domain.RepoKey{Owner: "bob", RepoName: "gadgets"}))
	assert.Equal(t, persistence.Key{PartitionKey: "ACCOUNT#bob", SortKey: "STAR#acme#widgets"}, StarKey("bob", repo))

	t.Run("Padded numbers sort numerically", func(t *testing.T) {
		assert.Less(t, IssueKey(repo, 9).SortKey, IssueKey(repo, 10).SortKey)
	})

	t.Run("TargetKey addresses the target entity", func(t *testing.T) {
		key, err := TargetKey(repo, domain.PRCommentTarget(5, "x"))
		require.NoError(t, err)
		assert.Equal(t, PRCommentKey(repo, 5, "x"), key)

		_, err = TargetKey(repo, domain.Target{Type: "commit"})
		assert.Error(t, err)
	})
}
