package domain

import (
	"fmt"
	"time"
)

// Repository is a hosted code repository, owned by a user or an organization.
type Repository struct {
	Owner       string    `json:"owner" validate:"required,slug,max=39"`
	RepoName    string    `json:"repo_name" validate:"required,slug,max=100"`
	Description string    `json:"description,omitempty" validate:"max=1024"`
	IsPrivate   bool      `json:"is_private"`
	Language    string    `json:"language,omitempty" validate:"max=64"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName returns "owner/repo".
func (r Repository) FullName() string {
	return RepoKey{Owner: r.Owner, RepoName: r.RepoName}.String()
}

// RepositoryUpdate carries the fields to change on a repository.
type RepositoryUpdate struct {
	Description *string `json:"description,omitempty" validate:"omitempty,max=1024"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
	Language    *string `json:"language,omitempty" validate:"omitempty,max=64"`
}

// Empty reports whether the update changes nothing.
func (u RepositoryUpdate) Empty() bool {
	return u.Description == nil && u.IsPrivate == nil && u.Language == nil
}

// RepoKey identifies a repository. Most entities are scoped to one.
type RepoKey struct {
	Owner    string `json:"owner" validate:"required,slug"`
	RepoName string `json:"repo_name" validate:"required,slug"`
}

func (k RepoKey) String() string {
	return fmt.Sprintf("%s/%s", k.Owner, k.RepoName)
}
