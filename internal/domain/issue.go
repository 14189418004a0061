package domain

import (
	"strings"
	"time"
)

// IssueStatus is the lifecycle state of an issue.
type IssueStatus string

const (
	IssueOpen   IssueStatus = "open"
	IssueClosed IssueStatus = "closed"
)

// Valid reports whether s is a known issue status.
func (s IssueStatus) Valid() bool {
	return s == IssueOpen || s == IssueClosed
}

// Upper returns the status as stored in index keys.
func (s IssueStatus) Upper() string {
	return strings.ToUpper(string(s))
}

// Issue is a numbered issue in a repository. IssueNumber is assigned on
// create from the repository's issue sequence and is never reused.
type Issue struct {
	Owner       string      `json:"owner" validate:"required,slug"`
	RepoName    string      `json:"repo_name" validate:"required,slug"`
	IssueNumber int         `json:"issue_number"`
	Title       string      `json:"title" validate:"required,max=256"`
	Body        string      `json:"body,omitempty"`
	Status      IssueStatus `json:"status" validate:"required,oneof=open closed"`
	Author      string      `json:"author" validate:"required,slug"`
	Assignees   []string    `json:"assignees,omitempty" validate:"dive,slug"`
	Labels      []string    `json:"labels,omitempty" validate:"dive,required,max=50"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Repo returns the key of the repository holding the issue.
func (i Issue) Repo() RepoKey {
	return RepoKey{Owner: i.Owner, RepoName: i.RepoName}
}

// IssueUpdate carries the fields to change on an issue. A non-nil empty slice
// clears assignees or labels.
type IssueUpdate struct {
	Title     *string      `json:"title,omitempty" validate:"omitempty,min=1,max=256"`
	Body      *string      `json:"body,omitempty"`
	Status    *IssueStatus `json:"status,omitempty" validate:"omitempty,oneof=open closed"`
	Assignees *[]string    `json:"assignees,omitempty" validate:"omitempty,dive,slug"`
	Labels    *[]string    `json:"labels,omitempty" validate:"omitempty,dive,required,max=50"`
}

// Empty reports whether the update changes nothing.
func (u IssueUpdate) Empty() bool {
	return u.Title == nil && u.Body == nil && u.Status == nil && u.Assignees == nil && u.Labels == nil
}
