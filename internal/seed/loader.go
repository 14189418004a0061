package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github-ddb-backend/internal/di"
	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
)

// Summary counts what Apply wrote and what already existed.
type Summary struct {
	Created int
	Skipped int
}

// Loader applies fixtures through the service layer.
type Loader struct {
	services *di.Services
	logger   *zap.Logger
	summary  Summary
}

func NewLoader(services *di.Services, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{services: services, logger: logger.Named("seed")}
}

// Apply writes the fixture in dependency order: accounts, repositories,
// relations, then issues and pull requests with their comments and
// reactions. Entities that already exist are skipped, so accounts,
// repositories and relations can be re-applied safely. Issues and pull
// requests are numbered on create and are added again on every run.
func (l *Loader) Apply(ctx context.Context, f *Fixture) (Summary, error) {
	l.summary = Summary{}
	steps := []func(context.Context, *Fixture) error{
		l.accounts,
		l.repositories,
		l.relations,
		l.issues,
		l.pullRequests,
	}
	for _, step := range steps {
		if err := step(ctx, f); err != nil {
			return l.summary, err
		}
	}
	l.logger.Info("fixture applied", zap.Int("created", l.summary.Created), zap.Int("skipped", l.summary.Skipped))
	return l.summary, nil
}

// record counts err as a creation, a skip for duplicates, or returns it.
func (l *Loader) record(what string, err error) error {
	switch {
	case err == nil:
		l.summary.Created++
		return nil
	case apperrors.IsDuplicate(err):
		l.summary.Skipped++
		l.logger.Debug("already exists", zap.String("entity", what))
		return nil
	default:
		return fmt.Errorf("seed %s: %w", what, err)
	}
}

func (l *Loader) accounts(ctx context.Context, f *Fixture) error {
	for _, u := range f.Users {
		_, err := l.services.Accounts.CreateUser(ctx, domain.User{
			Username: u.Username, Email: u.Email, Bio: u.Bio, PaymentPlanID: u.Plan,
		})
		if err := l.record("user "+u.Username, err); err != nil {
			return err
		}
	}
	for _, o := range f.Organizations {
		_, err := l.services.Accounts.CreateOrganization(ctx, domain.Organization{
			OrgName: o.Name, Description: o.Description, PaymentPlanID: o.Plan,
		})
		if err := l.record("organization "+o.Name, err); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) repositories(ctx context.Context, f *Fixture) error {
	for _, r := range f.Repositories {
		key, err := ParseRepoKey(r.Name)
		if err != nil {
			return err
		}
		_, err = l.services.Repositories.CreateRepository(ctx, domain.Repository{
			Owner: key.Owner, RepoName: key.RepoName,
			Description: r.Description, Language: r.Language, IsPrivate: r.Private,
		})
		if err := l.record("repository "+r.Name, err); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) relations(ctx context.Context, f *Fixture) error {
	for _, fk := range f.Forks {
		original, err := ParseRepoKey(fk.Original)
		if err != nil {
			return err
		}
		copied, err := ParseRepoKey(fk.Fork)
		if err != nil {
			return err
		}
		_, err = l.services.Repositories.ForkRepository(ctx, original, copied)
		if err := l.record("fork "+fk.Fork, err); err != nil {
			return err
		}
	}
	for _, s := range f.Stars {
		repo, err := ParseRepoKey(s.Repository)
		if err != nil {
			return err
		}
		_, err = l.services.Repositories.StarRepository(ctx, s.User, repo)
		if err := l.record("star "+s.User+"->"+s.Repository, err); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) issues(ctx context.Context, f *Fixture) error {
	for _, in := range f.Issues {
		repo, err := ParseRepoKey(in.Repository)
		if err != nil {
			return err
		}
		issue, err := l.services.Issues.CreateIssue(ctx, domain.Issue{
			Owner: repo.Owner, RepoName: repo.RepoName,
			Title: in.Title, Body: in.Body, Author: in.Author,
			Status: domain.IssueStatus(in.Status), Assignees: in.Assignees, Labels: in.Labels,
		})
		if err := l.record("issue "+in.Title, err); err != nil {
			return err
		}

		number := issue.IssueNumber
		if err := l.reactions(ctx, repo, domain.TargetRef{IssueNumber: &number}, in.Reactions); err != nil {
			return err
		}
		for _, c := range in.Comments {
			comment, err := l.services.Issues.AddComment(ctx, repo, number, c.Author, c.Body)
			if err := l.record(fmt.Sprintf("comment on %s#%d", repo, number), err); err != nil {
				return err
			}
			ref := domain.TargetRef{IssueNumber: &number, CommentID: comment.CommentID}
			if err := l.reactions(ctx, repo, ref, c.Reactions); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) pullRequests(ctx context.Context, f *Fixture) error {
	for _, in := range f.PullRequests {
		repo, err := ParseRepoKey(in.Repository)
		if err != nil {
			return err
		}
		pr, err := l.services.PullRequests.CreatePullRequest(ctx, domain.PullRequest{
			Owner: repo.Owner, RepoName: repo.RepoName,
			Title: in.Title, Body: in.Body, Author: in.Author,
			Status: domain.PullRequestOpen, SourceBranch: in.SourceBranch, TargetBranch: in.TargetBranch,
		})
		if err := l.record("pull request "+in.Title, err); err != nil {
			return err
		}

		number := pr.PRNumber
		if err := l.reactions(ctx, repo, domain.TargetRef{PRNumber: &number}, in.Reactions); err != nil {
			return err
		}
		for _, c := range in.Comments {
			comment, err := l.services.PullRequests.AddComment(ctx, repo, number, c.Author, c.Body)
			if err := l.record(fmt.Sprintf("comment on %s!%d", repo, number), err); err != nil {
				return err
			}
			ref := domain.TargetRef{PRNumber: &number, CommentID: comment.CommentID}
			if err := l.reactions(ctx, repo, ref, c.Reactions); err != nil {
				return err
			}
		}
		if in.MergeCommit != "" {
			if _, err := l.services.PullRequests.MergePullRequest(ctx, repo, number, in.MergeCommit); err != nil {
				return fmt.Errorf("seed merge of %s!%d: %w", repo, number, err)
			}
		}
	}
	return nil
}

func (l *Loader) reactions(ctx context.Context, repo domain.RepoKey, ref domain.TargetRef, reactions []Reaction) error {
	for _, r := range reactions {
		_, err := l.services.Reactions.AddReaction(ctx, repo, ref, r.User, r.Emoji)
		if err := l.record("reaction "+r.Emoji+" by "+r.User, err); err != nil {
			return err
		}
	}
	return nil
}
