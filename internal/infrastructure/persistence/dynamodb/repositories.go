package dynamodb

import (
	"go.uber.org/zap"

	"github-ddb-backend/internal/infrastructure/persistence"
)

// Repositories bundles every entity repository over one store.
type Repositories struct {
	Users         *UserRepository
	Organizations *OrganizationRepository
	Repos         *RepoRepository
	Issues        *IssueRepository
	PullRequests  *PullRequestRepository
	IssueComments *IssueCommentRepository
	PRComments    *PRCommentRepository
	Reactions     *ReactionRepository
	Forks         *ForkRepository
	Stars         *StarRepository
	Sequences     *SequenceAllocator
	Targets       *TargetResolver
}

// NewRepositories wires all repositories to store. A nil clock uses UTCClock.
func NewRepositories(store persistence.Store, logger *zap.Logger, clock Clock) *Repositories {
	seq := NewSequenceAllocator(store, logger)
	targets := NewTargetResolver(store)
	return &Repositories{
		Users:         NewUserRepository(store, logger, clock),
		Organizations: NewOrganizationRepository(store, logger, clock),
		Repos:         NewRepoRepository(store, logger, clock),
		Issues:        NewIssueRepository(store, seq, logger, clock),
		PullRequests:  NewPullRequestRepository(store, seq, logger, clock),
		IssueComments: NewIssueCommentRepository(store, logger, clock),
		PRComments:    NewPRCommentRepository(store, logger, clock),
		Reactions:     NewReactionRepository(store, targets, logger, clock),
		Forks:         NewForkRepository(store, logger, clock),
		Stars:         NewStarRepository(store, logger, clock),
		Sequences:     seq,
		Targets:       targets,
	}
}
