package dynamodb

import (
	"fmt"

	"github-ddb-backend/internal/domain"
	"github-ddb-backend/internal/infrastructure/persistence"
)

// ============================================================================
// KEY DERIVATION
// ============================================================================
//
// Every PK, SK and GSI key of the table is built here and nowhere else.
// Numbers are zero padded so that lexical order is numeric order.

const (
	prefixAccount      = "ACCOUNT#"
	prefixRepo         = "REPO#"
	prefixCounter      = "COUNTER#"
	prefixSequence     = "SEQUENCE#"
	prefixIssue        = "ISSUE#"
	prefixPullRequest  = "PR#"
	prefixIssueComment = "ISSUECOMMENT#"
	prefixPRComment    = "PRCOMMENT#"
	prefixReaction     = "REACTION#"
	prefixFork         = "FORK#"
	prefixStar         = "STAR#"
)

func padNumber(n int) string {
	return fmt.Sprintf("%010d", n)
}

// BuildAccountPK returns ACCOUNT#{name}. Users and organizations share it.
func BuildAccountPK(name string) string {
	return prefixAccount + name
}

// BuildRepoPK returns REPO#{owner}#{repo}, the partition of a repository and
// everything it owns.
func BuildRepoPK(repo domain.RepoKey) string {
	return fmt.Sprintf("%s%s#%s", prefixRepo, repo.Owner, repo.RepoName)
}

// AccountKey is the key of a user or organization item.
func AccountKey(name string) persistence.Key {
	pk := BuildAccountPK(name)
	return persistence.Key{PartitionKey: pk, SortKey: pk}
}

// RepositoryKey is the key of a repository item.
func RepositoryKey(repo domain.RepoKey) persistence.Key {
	pk := BuildRepoPK(repo)
	return persistence.Key{PartitionKey: pk, SortKey: pk}
}

// repositoryOwnerIndex returns the GSI3 keys listing repositories by owner.
func repositoryOwnerIndex(repo domain.RepoKey) (pk, sk string) {
	return BuildAccountPK(repo.Owner), prefixRepo + repo.RepoName
}

// CounterKey is the key of the counter item behind a sequence.
func CounterKey(scope domain.RepoKey, sequence string) persistence.Key {
	return persistence.Key{
		PartitionKey: fmt.Sprintf("%s%s#%s", prefixCounter, scope.Owner, scope.RepoName),
		SortKey:      prefixSequence + sequence,
	}
}

// IssueKey is the key of an issue item.
func IssueKey(repo domain.RepoKey, number int) persistence.Key {
	return persistence.Key{PartitionKey: BuildRepoPK(repo), SortKey: prefixIssue + padNumber(number)}
}

// issueStatusIndex returns the GSI1 keys listing issues by status.
func issueStatusIndex(repo domain.RepoKey, status domain.IssueStatus, number int) (pk, sk string) {
	return issueStatusPK(repo), issueStatusPrefix(status) + padNumber(number)
}

func issueStatusPK(repo domain.RepoKey) string {
	return fmt.Sprintf("%s%s#%s", prefixIssue, repo.Owner, repo.RepoName)
}

func issueStatusPrefix(status domain.IssueStatus) string {
	return prefixIssue + status.Upper() + "#"
}

// PullRequestKey is the key of a pull request item.
func PullRequestKey(repo domain.RepoKey, number int) persistence.Key {
	return persistence.Key{PartitionKey: BuildRepoPK(repo), SortKey: prefixPullRequest + padNumber(number)}
}

// pullRequestStatusIndex returns the GSI1 keys listing pull requests by status.
func pullRequestStatusIndex(repo domain.RepoKey, status domain.PullRequestStatus, number int) (pk, sk string) {
	return pullRequestStatusPK(repo), pullRequestStatusPrefix(status) + padNumber(number)
}

func pullRequestStatusPK(repo domain.RepoKey) string {
	return fmt.Sprintf("%s%s#%s", prefixPullRequest, repo.Owner, repo.RepoName)
}

func pullRequestStatusPrefix(status domain.PullRequestStatus) string {
	return prefixPullRequest + status.Upper() + "#"
}

// IssueCommentKey is the key of an issue comment item.
func IssueCommentKey(repo domain.RepoKey, issueNumber int, commentID string) persistence.Key {
	return persistence.Key{PartitionKey: BuildRepoPK(repo), SortKey: issueCommentPrefix(issueNumber) + commentID}
}

func issueCommentPrefix(issueNumber int) string {
	return prefixIssueComment + padNumber(issueNumber) + "#"
}

// PRCommentKey is the key of a pull request comment item.
func PRCommentKey(repo domain.RepoKey, prNumber int, commentID string) persistence.Key {
	return persistence.Key{PartitionKey: BuildRepoPK(repo), SortKey: prCommentPrefix(prNumber) + commentID}
}

func prCommentPrefix(prNumber int) string {
	return prefixPRComment + padNumber(prNumber) + "#"
}

// ReactionKey is the key of a reaction item. The full relation is in the
// sort key, so a conditional put enforces uniqueness.
func ReactionKey(repo domain.RepoKey, target domain.Target, user, emoji string) persistence.Key {
	return persistence.Key{
		PartitionKey: BuildRepoPK(repo),
		SortKey:      reactionTargetPrefix(target) + user + "#" + emoji,
	}
}

func reactionTargetPrefix(target domain.Target) string {
	return fmt.Sprintf("%s%s#%s#", prefixReaction, target.Type, target.ID())
}

// ForkKey is the key of a fork relation, stored under the original.
func ForkKey(original, fork domain.RepoKey) persistence.Key {
	return persistence.Key{
		PartitionKey: BuildRepoPK(original),
		SortKey:      fmt.Sprintf("%s%s#%s", prefixFork, fork.Owner, fork.RepoName),
	}
}

// StarKey is the key of a star, stored under the user.
func StarKey(username string, repo domain.RepoKey) persistence.Key {
	return persistence.Key{
		PartitionKey: BuildAccountPK(username),
		SortKey:      fmt.Sprintf("%s%s#%s", prefixStar, repo.Owner, repo.RepoName),
	}
}

// stargazerIndex returns the GSI2 keys listing a repository's stargazers.
func stargazerIndex(username string, repo domain.RepoKey) (pk, sk string) {
	return BuildRepoPK(repo), prefixStar + username
}

// TargetKey returns the key of the entity a target addresses.
func TargetKey(repo domain.RepoKey, target domain.Target) (persistence.Key, error) {
	switch target.Type {
	case domain.TargetIssue:
		return IssueKey(repo, target.Number), nil
	case domain.TargetPullRequest:
		return PullRequestKey(repo, target.Number), nil
	case domain.TargetIssueComment:
		return IssueCommentKey(repo, target.Number, target.CommentID), nil
	case domain.TargetPRComment:
		return PRCommentKey(repo, target.Number, target.CommentID), nil
	default:
		return persistence.Key{}, fmt.Errorf("unknown target type %q", target.Type)
	}
}
