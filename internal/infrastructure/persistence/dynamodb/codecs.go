package dynamodb

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/infrastructure/persistence"
)

// Entity type names used in errors.
const (
	EntityUser         = domain.EntityUser
	EntityOrganization = domain.EntityOrganization
	EntityRepository   = domain.EntityRepository
	EntityIssue        = domain.EntityIssue
	EntityPullRequest  = domain.EntityPullRequest
	EntityIssueComment = domain.EntityIssueComment
	EntityPRComment    = domain.EntityPRComment
	EntityReaction     = domain.EntityReaction
	EntityFork         = domain.EntityFork
	EntityStar         = domain.EntityStar
)

// Values of the EntityType attribute.
const (
	itemUser         = "User"
	itemOrganization = "Organization"
	itemRepository   = "Repository"
	itemIssue        = "Issue"
	itemPullRequest  = "PullRequest"
	itemIssueComment = "IssueComment"
	itemPRComment    = "PRComment"
	itemReaction     = "Reaction"
	itemFork         = "Fork"
	itemStar         = "Star"
)

func marshalRecord(entityType string, record any) (persistence.Item, error) {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, apperrors.NewStorage("encode "+entityType, err)
	}
	return item, nil
}

func unmarshalRecord(entityType string, item persistence.Item, record any) error {
	if err := attributevalue.UnmarshalMap(item, record); err != nil {
		return apperrors.NewCorruptItem(entityType, err)
	}
	return nil
}

func timestampsOf(entityType string, base BaseItem) (created, updated time.Time, err error) {
	created, updated, err = base.timestamps()
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewCorruptItem(entityType, err)
	}
	return created, updated, nil
}

// ============================================================================
// USER
// ============================================================================

type UserCodec struct{}

type userRecord struct {
	BaseItem
	Username      string `dynamodbav:"Username"`
	Email         string `dynamodbav:"Email,omitempty"`
	Bio           string `dynamodbav:"Bio,omitempty"`
	PaymentPlanID string `dynamodbav:"PaymentPlanID,omitempty"`
}

func (UserCodec) EntityType() string                  { return EntityUser }
func (UserCodec) ItemType() string                    { return itemUser }
func (UserCodec) KeyOf(u domain.User) persistence.Key { return AccountKey(u.Username) }
func (UserCodec) NaturalKey(u domain.User) string     { return u.Username }

func (c UserCodec) ToItem(u domain.User) (persistence.Item, error) {
	if err := domain.Validate(u); err != nil {
		return nil, err
	}
	return marshalRecord(EntityUser, userRecord{
		BaseItem:      newBaseItem(itemUser, c.KeyOf(u), u.CreatedAt, u.UpdatedAt),
		Username:      u.Username,
		Email:         u.Email,
		Bio:           u.Bio,
		PaymentPlanID: u.PaymentPlanID,
	})
}

func (UserCodec) ParseItem(item persistence.Item) (domain.User, error) {
	var rec userRecord
	if err := unmarshalRecord(EntityUser, item, &rec); err != nil {
		return domain.User{}, err
	}
	created, updated, err := timestampsOf(EntityUser, rec.BaseItem)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		Username:      rec.Username,
		Email:         rec.Email,
		Bio:           rec.Bio,
		PaymentPlanID: rec.PaymentPlanID,
		CreatedAt:     created,
		UpdatedAt:     updated,
	}, nil
}

// ============================================================================
// ORGANIZATION
// ============================================================================

type OrganizationCodec struct{}

type organizationRecord struct {
	BaseItem
	OrgName       string `dynamodbav:"OrgName"`
	Description   string `dynamodbav:"Description,omitempty"`
	PaymentPlanID string `dynamodbav:"PaymentPlanID,omitempty"`
}

func (OrganizationCodec) EntityType() string { return EntityOrganization }
func (OrganizationCodec) ItemType() string   { return itemOrganization }
func (OrganizationCodec) KeyOf(o domain.Organization) persistence.Key {
	return AccountKey(o.OrgName)
}
func (OrganizationCodec) NaturalKey(o domain.Organization) string { return o.OrgName }

func (c OrganizationCodec) ToItem(o domain.Organization) (persistence.Item, error) {
	if err := domain.Validate(o); err != nil {
		return nil, err
	}
	return marshalRecord(EntityOrganization, organizationRecord{
		BaseItem:      newBaseItem(itemOrganization, c.KeyOf(o), o.CreatedAt, o.UpdatedAt),
		OrgName:       o.OrgName,
		Description:   o.Description,
		PaymentPlanID: o.PaymentPlanID,
	})
}

func (OrganizationCodec) ParseItem(item persistence.Item) (domain.Organization, error) {
	var rec organizationRecord
	if err := unmarshalRecord(EntityOrganization, item, &rec); err != nil {
		return domain.Organization{}, err
	}
	created, updated, err := timestampsOf(EntityOrganization, rec.BaseItem)
	if err != nil {
		return domain.Organization{}, err
	}
	return domain.Organization{
		OrgName:       rec.OrgName,
		Description:   rec.Description,
		PaymentPlanID: rec.PaymentPlanID,
		CreatedAt:     created,
		UpdatedAt:     updated,
	}, nil
}

// ============================================================================
// REPOSITORY
// ============================================================================

type RepositoryCodec struct{}

type repositoryRecord struct {
	BaseItem
	Owner       string `dynamodbav:"Owner"`
	RepoName    string `dynamodbav:"RepoName"`
	Description string `dynamodbav:"Description,omitempty"`
	IsPrivate   bool   `dynamodbav:"IsPrivate"`
	Language    string `dynamodbav:"Language,omitempty"`
}

func (RepositoryCodec) EntityType() string { return EntityRepository }
func (RepositoryCodec) ItemType() string   { return itemRepository }
func (RepositoryCodec) KeyOf(r domain.Repository) persistence.Key {
	return RepositoryKey(repoKeyOf(r))
}
func (RepositoryCodec) NaturalKey(r domain.Repository) string { return r.FullName() }

func repoKeyOf(r domain.Repository) domain.RepoKey {
	return domain.RepoKey{Owner: r.Owner, RepoName: r.RepoName}
}

func (c RepositoryCodec) ToItem(r domain.Repository) (persistence.Item, error) {
	if err := domain.Validate(r); err != nil {
		return nil, err
	}
	base := newBaseItem(itemRepository, c.KeyOf(r), r.CreatedAt, r.UpdatedAt)
	base.GSI3PK, base.GSI3SK = repositoryOwnerIndex(repoKeyOf(r))
	return marshalRecord(EntityRepository, repositoryRecord{
		BaseItem:    base,
		Owner:       r.Owner,
		RepoName:    r.RepoName,
		Description: r.Description,
		IsPrivate:   r.IsPrivate,
		Language:    r.Language,
	})
}

func (RepositoryCodec) ParseItem(item persistence.Item) (domain.Repository, error) {
	var rec repositoryRecord
	if err := unmarshalRecord(EntityRepository, item, &rec); err != nil {
		return domain.Repository{}, err
	}
	created, updated, err := timestampsOf(EntityRepository, rec.BaseItem)
	if err != nil {
		return domain.Repository{}, err
	}
	return domain.Repository{
		Owner:       rec.Owner,
		RepoName:    rec.RepoName,
		Description: rec.Description,
		IsPrivate:   rec.IsPrivate,
		Language:    rec.Language,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

// ============================================================================
// ISSUE
// ============================================================================

type IssueCodec struct{}

type issueRecord struct {
	BaseItem
	Owner       string   `dynamodbav:"Owner"`
	RepoName    string   `dynamodbav:"RepoName"`
	IssueNumber int      `dynamodbav:"IssueNumber"`
	Title       string   `dynamodbav:"Title"`
	Body        string   `dynamodbav:"Body,omitempty"`
	Status      string   `dynamodbav:"Status"`
	Author      string   `dynamodbav:"Author"`
	Assignees   []string `dynamodbav:"Assignees,omitempty"`
	Labels      []string `dynamodbav:"Labels,omitempty"`
}

func (IssueCodec) EntityType() string                   { return EntityIssue }
func (IssueCodec) ItemType() string                     { return itemIssue }
func (IssueCodec) KeyOf(i domain.Issue) persistence.Key { return IssueKey(i.Repo(), i.IssueNumber) }
func (IssueCodec) NaturalKey(i domain.Issue) string {
	return fmt.Sprintf("%s#%d", i.Repo(), i.IssueNumber)
}

func (c IssueCodec) ToItem(i domain.Issue) (persistence.Item, error) {
	if err := domain.Validate(i); err != nil {
		return nil, err
	}
	if i.IssueNumber < 1 {
		return nil, apperrors.NewValidation("issue_number", "must be assigned before encoding")
	}
	base := newBaseItem(itemIssue, c.KeyOf(i), i.CreatedAt, i.UpdatedAt)
	base.GSI1PK, base.GSI1SK = issueStatusIndex(i.Repo(), i.Status, i.IssueNumber)
	return marshalRecord(EntityIssue, issueRecord{
		BaseItem:    base,
		Owner:       i.Owner,
		RepoName:    i.RepoName,
		IssueNumber: i.IssueNumber,
		Title:       i.Title,
		Body:        i.Body,
		Status:      string(i.Status),
		Author:      i.Author,
		Assignees:   nilIfEmpty(i.Assignees),
		Labels:      nilIfEmpty(i.Labels),
	})
}

func (IssueCodec) ParseItem(item persistence.Item) (domain.Issue, error) {
	var rec issueRecord
	if err := unmarshalRecord(EntityIssue, item, &rec); err != nil {
		return domain.Issue{}, err
	}
	created, updated, err := timestampsOf(EntityIssue, rec.BaseItem)
	if err != nil {
		return domain.Issue{}, err
	}
	status := domain.IssueStatus(rec.Status)
	if !status.Valid() {
		return domain.Issue{}, apperrors.NewCorruptItem(EntityIssue, fmt.Errorf("unknown status %q", rec.Status))
	}
	return domain.Issue{
		Owner:       rec.Owner,
		RepoName:    rec.RepoName,
		IssueNumber: rec.IssueNumber,
		Title:       rec.Title,
		Body:        rec.Body,
		Status:      status,
		Author:      rec.Author,
		Assignees:   nilIfEmpty(rec.Assignees),
		Labels:      nilIfEmpty(rec.Labels),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

// ============================================================================
// PULL REQUEST
// ============================================================================

type PullRequestCodec struct{}

type pullRequestRecord struct {
	BaseItem
	Owner          string `dynamodbav:"Owner"`
	RepoName       string `dynamodbav:"RepoName"`
	PRNumber       int    `dynamodbav:"PRNumber"`
	Title          string `dynamodbav:"Title"`
	Body           string `dynamodbav:"Body,omitempty"`
	Status         string `dynamodbav:"Status"`
	Author         string `dynamodbav:"Author"`
	SourceBranch   string `dynamodbav:"SourceBranch"`
	TargetBranch   string `dynamodbav:"TargetBranch"`
	MergeCommitSHA string `dynamodbav:"MergeCommitSHA,omitempty"`
}

func (PullRequestCodec) EntityType() string { return EntityPullRequest }
func (PullRequestCodec) ItemType() string   { return itemPullRequest }
func (PullRequestCodec) KeyOf(p domain.PullRequest) persistence.Key {
	return PullRequestKey(p.Repo(), p.PRNumber)
}
func (PullRequestCodec) NaturalKey(p domain.PullRequest) string {
	return fmt.Sprintf("%s#%d", p.Repo(), p.PRNumber)
}

func (c PullRequestCodec) ToItem(p domain.PullRequest) (persistence.Item, error) {
	if err := domain.Validate(p); err != nil {
		return nil, err
	}
	if p.PRNumber < 1 {
		return nil, apperrors.NewValidation("pr_number", "must be assigned before encoding")
	}
	base := newBaseItem(itemPullRequest, c.KeyOf(p), p.CreatedAt, p.UpdatedAt)
	base.GSI1PK, base.GSI1SK = pullRequestStatusIndex(p.Repo(), p.Status, p.PRNumber)
	return marshalRecord(EntityPullRequest, pullRequestRecord{
		BaseItem:       base,
		Owner:          p.Owner,
		RepoName:       p.RepoName,
		PRNumber:       p.PRNumber,
		Title:          p.Title,
		Body:           p.Body,
		Status:         string(p.Status),
		Author:         p.Author,
		SourceBranch:   p.SourceBranch,
		TargetBranch:   p.TargetBranch,
		MergeCommitSHA: p.MergeCommitSHA,
	})
}

func (PullRequestCodec) ParseItem(item persistence.Item) (domain.PullRequest, error) {
	var rec pullRequestRecord
	if err := unmarshalRecord(EntityPullRequest, item, &rec); err != nil {
		return domain.PullRequest{}, err
	}
	created, updated, err := timestampsOf(EntityPullRequest, rec.BaseItem)
	if err != nil {
		return domain.PullRequest{}, err
	}
	status := domain.PullRequestStatus(rec.Status)
	if !status.Valid() {
		return domain.PullRequest{}, apperrors.NewCorruptItem(EntityPullRequest, fmt.Errorf("unknown status %q", rec.Status))
	}
	return domain.PullRequest{
		Owner:          rec.Owner,
		RepoName:       rec.RepoName,
		PRNumber:       rec.PRNumber,
		Title:          rec.Title,
		Body:           rec.Body,
		Status:         status,
		Author:         rec.Author,
		SourceBranch:   rec.SourceBranch,
		TargetBranch:   rec.TargetBranch,
		MergeCommitSHA: rec.MergeCommitSHA,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}, nil
}

// ============================================================================
// COMMENTS
// ============================================================================

type IssueCommentCodec struct{}

type commentRecord struct {
	BaseItem
	Owner     string `dynamodbav:"Owner"`
	RepoName  string `dynamodbav:"RepoName"`
	Number    int    `dynamodbav:"ParentNumber"`
	CommentID string `dynamodbav:"CommentID"`
	Author    string `dynamodbav:"Author"`
	Body      string `dynamodbav:"Body"`
}

func (IssueCommentCodec) EntityType() string { return EntityIssueComment }
func (IssueCommentCodec) ItemType() string   { return itemIssueComment }
func (IssueCommentCodec) KeyOf(c domain.IssueComment) persistence.Key {
	return IssueCommentKey(domain.RepoKey{Owner: c.Owner, RepoName: c.RepoName}, c.IssueNumber, c.CommentID)
}
func (IssueCommentCodec) NaturalKey(c domain.IssueComment) string {
	return fmt.Sprintf("%s/%s#%d/%s", c.Owner, c.RepoName, c.IssueNumber, c.CommentID)
}

func (codec IssueCommentCodec) ToItem(c domain.IssueComment) (persistence.Item, error) {
	if err := domain.Validate(c); err != nil {
		return nil, err
	}
	if c.CommentID == "" {
		return nil, apperrors.NewValidation("comment_id", "must be assigned before encoding")
	}
	return marshalRecord(EntityIssueComment, commentRecord{
		BaseItem:  newBaseItem(itemIssueComment, codec.KeyOf(c), c.CreatedAt, c.UpdatedAt),
		Owner:     c.Owner,
		RepoName:  c.RepoName,
		Number:    c.IssueNumber,
		CommentID: c.CommentID,
		Author:    c.Author,
		Body:      c.Body,
	})
}

func (IssueCommentCodec) ParseItem(item persistence.Item) (domain.IssueComment, error) {
	var rec commentRecord
	if err := unmarshalRecord(EntityIssueComment, item, &rec); err != nil {
		return domain.IssueComment{}, err
	}
	created, updated, err := timestampsOf(EntityIssueComment, rec.BaseItem)
	if err != nil {
		return domain.IssueComment{}, err
	}
	return domain.IssueComment{
		Owner:       rec.Owner,
		RepoName:    rec.RepoName,
		IssueNumber: rec.Number,
		CommentID:   rec.CommentID,
		Author:      rec.Author,
		Body:        rec.Body,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

type PRCommentCodec struct{}

func (PRCommentCodec) EntityType() string { return EntityPRComment }
func (PRCommentCodec) ItemType() string   { return itemPRComment }
func (PRCommentCodec) KeyOf(c domain.PRComment) persistence.Key {
	return PRCommentKey(domain.RepoKey{Owner: c.Owner, RepoName: c.RepoName}, c.PRNumber, c.CommentID)
}
func (PRCommentCodec) NaturalKey(c domain.PRComment) string {
	return fmt.Sprintf("%s/%s#%d/%s", c.Owner, c.RepoName, c.PRNumber, c.CommentID)
}

func (codec PRCommentCodec) ToItem(c domain.PRComment) (persistence.Item, error) {
	if err := domain.Validate(c); err != nil {
		return nil, err
	}
	if c.CommentID == "" {
		return nil, apperrors.NewValidation("comment_id", "must be assigned before encoding")
	}
	return marshalRecord(EntityPRComment, commentRecord{
		BaseItem:  newBaseItem(itemPRComment, codec.KeyOf(c), c.CreatedAt, c.UpdatedAt),
		Owner:     c.Owner,
		RepoName:  c.RepoName,
		Number:    c.PRNumber,
		CommentID: c.CommentID,
		Author:    c.Author,
		Body:      c.Body,
	})
}

func (PRCommentCodec) ParseItem(item persistence.Item) (domain.PRComment, error) {
	var rec commentRecord
	if err := unmarshalRecord(EntityPRComment, item, &rec); err != nil {
		return domain.PRComment{}, err
	}
	created, updated, err := timestampsOf(EntityPRComment, rec.BaseItem)
	if err != nil {
		return domain.PRComment{}, err
	}
	return domain.PRComment{
		Owner:     rec.Owner,
		RepoName:  rec.RepoName,
		PRNumber:  rec.Number,
		CommentID: rec.CommentID,
		Author:    rec.Author,
		Body:      rec.Body,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// ============================================================================
// REACTION
// ============================================================================

type ReactionCodec struct{}

type reactionRecord struct {
	BaseItem
	Owner      string `dynamodbav:"Owner"`
	RepoName   string `dynamodbav:"RepoName"`
	TargetType string `dynamodbav:"TargetType"`
	TargetID   string `dynamodbav:"TargetID"`
	User       string `dynamodbav:"User"`
	Emoji      string `dynamodbav:"Emoji"`
}

func (ReactionCodec) EntityType() string { return EntityReaction }
func (ReactionCodec) ItemType() string   { return itemReaction }
func (ReactionCodec) KeyOf(r domain.Reaction) persistence.Key {
	return ReactionKey(domain.RepoKey{Owner: r.Owner, RepoName: r.RepoName}, r.Target, r.User, r.Emoji)
}
func (ReactionCodec) NaturalKey(r domain.Reaction) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", r.Owner, r.RepoName, r.Target, r.User, r.Emoji)
}

func (c ReactionCodec) ToItem(r domain.Reaction) (persistence.Item, error) {
	if err := domain.Validate(r); err != nil {
		return nil, err
	}
	if err := r.Target.Validate(); err != nil {
		return nil, err
	}
	return marshalRecord(EntityReaction, reactionRecord{
		BaseItem:   newBaseItem(itemReaction, c.KeyOf(r), r.CreatedAt, r.UpdatedAt),
		Owner:      r.Owner,
		RepoName:   r.RepoName,
		TargetType: string(r.Target.Type),
		TargetID:   r.Target.ID(),
		User:       r.User,
		Emoji:      r.Emoji,
	})
}

func (ReactionCodec) ParseItem(item persistence.Item) (domain.Reaction, error) {
	var rec reactionRecord
	if err := unmarshalRecord(EntityReaction, item, &rec); err != nil {
		return domain.Reaction{}, err
	}
	created, updated, err := timestampsOf(EntityReaction, rec.BaseItem)
	if err != nil {
		return domain.Reaction{}, err
	}
	target, err := domain.ParseTarget(domain.TargetType(rec.TargetType), rec.TargetID)
	if err != nil {
		return domain.Reaction{}, apperrors.NewCorruptItem(EntityReaction, err)
	}
	return domain.Reaction{
		Owner:     rec.Owner,
		RepoName:  rec.RepoName,
		Target:    target,
		User:      rec.User,
		Emoji:     rec.Emoji,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// ============================================================================
// FORK AND STAR
// ============================================================================

type ForkCodec struct{}

type forkRecord struct {
	BaseItem
	OriginalOwner string `dynamodbav:"OriginalOwner"`
	OriginalRepo  string `dynamodbav:"OriginalRepo"`
	ForkOwner     string `dynamodbav:"ForkOwner"`
	ForkRepo      string `dynamodbav:"ForkRepo"`
}

func (ForkCodec) EntityType() string                  { return EntityFork }
func (ForkCodec) ItemType() string                    { return itemFork }
func (ForkCodec) KeyOf(f domain.Fork) persistence.Key { return ForkKey(f.Original(), f.Copy()) }
func (ForkCodec) NaturalKey(f domain.Fork) string {
	return fmt.Sprintf("%s->%s", f.Original(), f.Copy())
}

func (c ForkCodec) ToItem(f domain.Fork) (persistence.Item, error) {
	if err := domain.Validate(f); err != nil {
		return nil, err
	}
	return marshalRecord(EntityFork, forkRecord{
		BaseItem:      newBaseItem(itemFork, c.KeyOf(f), f.CreatedAt, f.UpdatedAt),
		OriginalOwner: f.OriginalOwner,
		OriginalRepo:  f.OriginalRepo,
		ForkOwner:     f.ForkOwner,
		ForkRepo:      f.ForkRepo,
	})
}

func (ForkCodec) ParseItem(item persistence.Item) (domain.Fork, error) {
	var rec forkRecord
	if err := unmarshalRecord(EntityFork, item, &rec); err != nil {
		return domain.Fork{}, err
	}
	created, updated, err := timestampsOf(EntityFork, rec.BaseItem)
	if err != nil {
		return domain.Fork{}, err
	}
	return domain.Fork{
		OriginalOwner: rec.OriginalOwner,
		OriginalRepo:  rec.OriginalRepo,
		ForkOwner:     rec.ForkOwner,
		ForkRepo:      rec.ForkRepo,
		CreatedAt:     created,
		UpdatedAt:     updated,
	}, nil
}

type StarCodec struct{}

type starRecord struct {
	BaseItem
	Username  string `dynamodbav:"Username"`
	RepoOwner string `dynamodbav:"RepoOwner"`
	RepoName  string `dynamodbav:"RepoName"`
}

func (StarCodec) EntityType() string                  { return EntityStar }
func (StarCodec) ItemType() string                    { return itemStar }
func (StarCodec) KeyOf(s domain.Star) persistence.Key { return StarKey(s.Username, s.Repo()) }
func (StarCodec) NaturalKey(s domain.Star) string {
	return fmt.Sprintf("%s->%s", s.Username, s.Repo())
}

func (c StarCodec) ToItem(s domain.Star) (persistence.Item, error) {
	if err := domain.Validate(s); err != nil {
		return nil, err
	}
	base := newBaseItem(itemStar, c.KeyOf(s), s.CreatedAt, s.UpdatedAt)
	base.GSI2PK, base.GSI2SK = stargazerIndex(s.Username, s.Repo())
	return marshalRecord(EntityStar, starRecord{
		BaseItem:  base,
		Username:  s.Username,
		RepoOwner: s.RepoOwner,
		RepoName:  s.RepoName,
	})
}

func (StarCodec) ParseItem(item persistence.Item) (domain.Star, error) {
	var rec starRecord
	if err := unmarshalRecord(EntityStar, item, &rec); err != nil {
		return domain.Star{}, err
	}
	created, updated, err := timestampsOf(EntityStar, rec.BaseItem)
	if err != nil {
		return domain.Star{}, err
	}
	return domain.Star{
		Username:  rec.Username,
		RepoOwner: rec.RepoOwner,
		RepoName:  rec.RepoName,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}
