package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github-ddb-backend/internal/domain"
	"github-ddb-backend/internal/repository"
)

// ReactionService manages reactions. Callers address the reacted-to entity
// with a TargetRef, which is resolved once per call.
type ReactionService struct {
	reactions repository.ReactionRepository
	targets   repository.TargetResolver
	logger    *zap.Logger
}

func NewReactionService(reactions repository.ReactionRepository, targets repository.TargetResolver, logger *zap.Logger) *ReactionService {
	return &ReactionService{reactions: reactions, targets: targets, logger: named(logger, "reactions")}
}

// AddReaction records user's emoji on the addressed entity. Reacting twice
// with the same emoji fails with DuplicateEntityError.
func (s *ReactionService) AddReaction(ctx context.Context, repo domain.RepoKey, ref domain.TargetRef, user, emoji string) (domain.Reaction, error) {
	target, err := s.targets.Resolve(ref)
	if err != nil {
		return domain.Reaction{}, err
	}
	reaction, err := s.reactions.Create(ctx, domain.Reaction{
		Owner:    repo.Owner,
		RepoName: repo.RepoName,
		Target:   target,
		User:     user,
		Emoji:    emoji,
	})
	if err != nil {
		return domain.Reaction{}, err
	}
	s.logger.Debug("reaction added", zap.Stringer("repository", repo), zap.Stringer("target", target))
	return reaction, nil
}

func (s *ReactionService) GetReaction(ctx context.Context, repo domain.RepoKey, ref domain.TargetRef, user, emoji string) (domain.Reaction, error) {
	target, err := s.targets.Resolve(ref)
	if err != nil {
		return domain.Reaction{}, err
	}
	return s.get(ctx, repo, target, user, emoji)
}

// ListReactions returns the reactions on the addressed entity, optionally
// restricted to one emoji and truncated to filter.Limit.
func (s *ReactionService) ListReactions(ctx context.Context, repo domain.RepoKey, ref domain.TargetRef, filter repository.ReactionFilter) ([]domain.Reaction, error) {
	target, err := s.targets.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return s.reactions.ListByTarget(ctx, repo, target, filter)
}

func (s *ReactionService) RemoveReaction(ctx context.Context, repo domain.RepoKey, ref domain.TargetRef, user, emoji string) error {
	target, err := s.targets.Resolve(ref)
	if err != nil {
		return err
	}
	if _, err := s.get(ctx, repo, target, user, emoji); err != nil {
		return err
	}
	return s.reactions.Delete(ctx, repo, target, user, emoji)
}

func (s *ReactionService) get(ctx context.Context, repo domain.RepoKey, target domain.Target, user, emoji string) (domain.Reaction, error) {
	reaction, err := s.reactions.Get(ctx, repo, target, user, emoji)
	return required(reaction, err, domain.EntityReaction, fmt.Sprintf("%s/%s/%s/%s", repo, target, user, emoji))
}
