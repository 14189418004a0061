package domain

// Entity kind names carried by DuplicateEntityError and EntityNotFoundError.
const (
	EntityUser         = "UserEntity"
	EntityOrganization = "OrganizationEntity"
	EntityRepository   = "RepositoryEntity"
	EntityIssue        = "IssueEntity"
	EntityPullRequest  = "PullRequestEntity"
	EntityIssueComment = "IssueCommentEntity"
	EntityPRComment    = "PRCommentEntity"
	EntityReaction     = "ReactionEntity"
	EntityFork         = "ForkEntity"
	EntityStar         = "StarEntity"
)
