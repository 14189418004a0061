package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewCommentID returns a fresh comment identifier. Version 7 UUIDs sort by
// creation time, so comments list in the order they were written.
func NewCommentID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IssueComment is a comment on an issue.
type IssueComment struct {
	Owner       string    `json:"owner" validate:"required,slug"`
	RepoName    string    `json:"repo_name" validate:"required,slug"`
	IssueNumber int       `json:"issue_number" validate:"min=1"`
	CommentID   string    `json:"comment_id"`
	Author      string    `json:"author" validate:"required,slug"`
	Body        string    `json:"body" validate:"required,max=65536"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Target returns the reaction target addressing this comment.
func (c IssueComment) Target() Target {
	return IssueCommentTarget(c.IssueNumber, c.CommentID)
}

// PRComment is a comment on a pull request.
type PRComment struct {
	Owner     string    `json:"owner" validate:"required,slug"`
	RepoName  string    `json:"repo_name" validate:"required,slug"`
	PRNumber  int       `json:"pr_number" validate:"min=1"`
	CommentID string    `json:"comment_id"`
	Author    string    `json:"author" validate:"required,slug"`
	Body      string    `json:"body" validate:"required,max=65536"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Target returns the reaction target addressing this comment.
func (c PRComment) Target() Target {
	return PRCommentTarget(c.PRNumber, c.CommentID)
}
