package dynamodb

import (
	"context"

	"github-ddb-backend/internal/domain"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/repository"
)

// TargetResolver resolves caller addressing into a Target and checks the
// addressed issue, pull request or comment is stored.
type TargetResolver struct {
	store persistence.Store
}

var _ repository.TargetResolver = (*TargetResolver)(nil)

func NewTargetResolver(store persistence.Store) *TargetResolver {
	return &TargetResolver{store: store}
}

// Resolve applies domain.ResolveTarget.
func (r *TargetResolver) Resolve(ref domain.TargetRef) (domain.Target, error) {
	return domain.ResolveTarget(ref)
}

// Exists reports whether the target's entity is stored in repo.
func (r *TargetResolver) Exists(ctx context.Context, repo domain.RepoKey, target domain.Target) (bool, error) {
	if err := target.Validate(); err != nil {
		return false, err
	}
	key, err := TargetKey(repo, target)
	if err != nil {
		return false, err
	}

	item, err := r.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return item != nil && itemType(item) == targetItemType(target.Type), nil
}

func targetItemType(t domain.TargetType) string {
	switch t {
	case domain.TargetIssue:
		return itemIssue
	case domain.TargetPullRequest:
		return itemPullRequest
	case domain.TargetIssueComment:
		return itemIssueComment
	case domain.TargetPRComment:
		return itemPRComment
	}
	return ""
}
