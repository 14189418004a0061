package domain

import (
	"strings"
	"time"
)

// PullRequestStatus is the lifecycle state of a pull request.
type PullRequestStatus string

const (
	PullRequestOpen   PullRequestStatus = "open"
	PullRequestClosed PullRequestStatus = "closed"
	PullRequestMerged PullRequestStatus = "merged"
)

// Valid reports whether s is a known pull request status.
func (s PullRequestStatus) Valid() bool {
	switch s {
	case PullRequestOpen, PullRequestClosed, PullRequestMerged:
		return true
	}
	return false
}

// Upper returns the status as stored in index keys.
func (s PullRequestStatus) Upper() string {
	return strings.ToUpper(string(s))
}

// PullRequest is a numbered pull request. Its numbering is independent of the
// issue numbering of the same repository.
type PullRequest struct {
	Owner          string            `json:"owner" validate:"required,slug"`
	RepoName       string            `json:"repo_name" validate:"required,slug"`
	PRNumber       int               `json:"pr_number"`
	Title          string            `json:"title" validate:"required,max=256"`
	Body           string            `json:"body,omitempty"`
	Status         PullRequestStatus `json:"status" validate:"required,oneof=open closed merged"`
	Author         string            `json:"author" validate:"required,slug"`
	SourceBranch   string            `json:"source_branch" validate:"required,max=255"`
	TargetBranch   string            `json:"target_branch" validate:"required,max=255"`
	MergeCommitSHA string            `json:"merge_commit_sha,omitempty" validate:"omitempty,hexadecimal,min=7,max=64"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Repo returns the key of the repository holding the pull request.
func (p PullRequest) Repo() RepoKey {
	return RepoKey{Owner: p.Owner, RepoName: p.RepoName}
}

// PullRequestUpdate carries the fields to change on a pull request.
type PullRequestUpdate struct {
	Title          *string            `json:"title,omitempty" validate:"omitempty,min=1,max=256"`
	Body           *string            `json:"body,omitempty"`
	Status         *PullRequestStatus `json:"status,omitempty" validate:"omitempty,oneof=open closed merged"`
	SourceBranch   *string            `json:"source_branch,omitempty" validate:"omitempty,min=1,max=255"`
	TargetBranch   *string            `json:"target_branch,omitempty" validate:"omitempty,min=1,max=255"`
	MergeCommitSHA *string            `json:"merge_commit_sha,omitempty" validate:"omitempty,hexadecimal,min=7,max=64"`
}

// Empty reports whether the update changes nothing.
func (u PullRequestUpdate) Empty() bool {
	return u.Title == nil && u.Body == nil && u.Status == nil &&
		u.SourceBranch == nil && u.TargetBranch == nil && u.MergeCommitSHA == nil
}
