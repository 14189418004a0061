package domain

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github-ddb-backend/internal/errors"
)

// TargetType names the kind of entity a reaction attaches to.
type TargetType string

const (
	TargetIssue        TargetType = "issue"
	TargetPullRequest  TargetType = "pullrequest"
	TargetIssueComment TargetType = "issuecomment"
	TargetPRComment    TargetType = "prcomment"
)

// Valid reports whether t is one of the four target kinds.
func (t TargetType) Valid() bool {
	switch t {
	case TargetIssue, TargetPullRequest, TargetIssueComment, TargetPRComment:
		return true
	}
	return false
}

// IsComment reports whether t addresses a comment rather than its parent.
func (t TargetType) IsComment() bool {
	return t == TargetIssueComment || t == TargetPRComment
}

// Target is one of Issue(number), PullRequest(number),
// IssueComment(issueNumber, id) or PRComment(prNumber, id). Build it with the
// constructors below or ResolveTarget; never assemble the fields by hand.
type Target struct {
	Type      TargetType `json:"type"`
	Number    int        `json:"number"`
	CommentID string     `json:"comment_id,omitempty"`
}

func IssueTarget(issueNumber int) Target {
	return Target{Type: TargetIssue, Number: issueNumber}
}

func PullRequestTarget(prNumber int) Target {
	return Target{Type: TargetPullRequest, Number: prNumber}
}

func IssueCommentTarget(issueNumber int, commentID string) Target {
	return Target{Type: TargetIssueComment, Number: issueNumber, CommentID: commentID}
}

func PRCommentTarget(prNumber int, commentID string) Target {
	return Target{Type: TargetPRComment, Number: prNumber, CommentID: commentID}
}

// ID returns the canonical target id: "{n}" for issues and pull requests,
// "{n}-{commentID}" for comments.
func (t Target) ID() string {
	if t.Type.IsComment() {
		return fmt.Sprintf("%d-%s", t.Number, t.CommentID)
	}
	return strconv.Itoa(t.Number)
}

func (t Target) String() string {
	return string(t.Type) + "/" + t.ID()
}

// Validate checks that the variant is well formed.
func (t Target) Validate() error {
	if !t.Type.Valid() {
		return apperrors.NewValidationf("target_type", "unknown target type %q", t.Type)
	}
	if t.Number < 1 {
		return apperrors.NewValidation("target_id", "number must be positive")
	}
	if t.Type.IsComment() {
		if t.CommentID == "" {
			return apperrors.NewValidation("comment_id", "is required for comment targets")
		}
		if strings.ContainsAny(t.CommentID, "#/") {
			return apperrors.NewValidation("comment_id", "must not contain '#' or '/'")
		}
	} else if t.CommentID != "" {
		return apperrors.NewValidationf("comment_id", "not allowed for %s targets", t.Type)
	}
	return nil
}

// ParseTarget rebuilds a Target from its stored type and canonical id.
func ParseTarget(targetType TargetType, id string) (Target, error) {
	if !targetType.Valid() {
		return Target{}, apperrors.NewValidationf("target_type", "unknown target type %q", targetType)
	}

	numPart, commentID := id, ""
	if targetType.IsComment() {
		var ok bool
		numPart, commentID, ok = strings.Cut(id, "-")
		if !ok || commentID == "" {
			return Target{}, apperrors.NewValidationf("target_id", "%q is not of the form {number}-{comment_id}", id)
		}
	}

	n, err := strconv.Atoi(numPart)
	if err != nil {
		return Target{}, apperrors.NewValidationf("target_id", "%q does not start with a number", id)
	}

	t := Target{Type: targetType, Number: n, CommentID: commentID}
	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

// TargetRef is the loosely-typed addressing a caller supplies: an issue
// number or a pull request number, optionally with a comment id.
type TargetRef struct {
	IssueNumber *int   `json:"issue_number,omitempty"`
	PRNumber    *int   `json:"pr_number,omitempty"`
	CommentID   string `json:"comment_id,omitempty"`
}

// ResolveTarget turns a TargetRef into a Target. A ref with neither number,
// or with both, is a bad request.
func ResolveTarget(ref TargetRef) (Target, error) {
	var t Target
	switch {
	case ref.IssueNumber != nil && ref.PRNumber != nil:
		return Target{}, apperrors.NewValidation("target", "specify an issue number or a pull request number, not both")
	case ref.IssueNumber != nil:
		t = IssueTarget(*ref.IssueNumber)
		if ref.CommentID != "" {
			t = IssueCommentTarget(*ref.IssueNumber, ref.CommentID)
		}
	case ref.PRNumber != nil:
		t = PullRequestTarget(*ref.PRNumber)
		if ref.CommentID != "" {
			t = PRCommentTarget(*ref.PRNumber, ref.CommentID)
		}
	default:
		return Target{}, apperrors.NewValidation("target", "an issue number or a pull request number is required")
	}

	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}
