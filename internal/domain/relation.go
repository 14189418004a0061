package domain

import "time"

// Reaction is an emoji left by a user on an issue, a pull request or one of
// their comments. (target, user, emoji) is unique within a repository.
type Reaction struct {
	Owner     string    `json:"owner" validate:"required,slug"`
	RepoName  string    `json:"repo_name" validate:"required,slug"`
	Target    Target    `json:"target"`
	User      string    `json:"user" validate:"required,slug"`
	Emoji     string    `json:"emoji" validate:"required,max=32,excludesall=#/"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fork records that ForkOwner/ForkRepo was forked from
// OriginalOwner/OriginalRepo.
type Fork struct {
	OriginalOwner string    `json:"original_owner" validate:"required,slug"`
	OriginalRepo  string    `json:"original_repo" validate:"required,slug"`
	ForkOwner     string    `json:"fork_owner" validate:"required,slug"`
	ForkRepo      string    `json:"fork_repo" validate:"required,slug"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Original returns the key of the forked repository.
func (f Fork) Original() RepoKey {
	return RepoKey{Owner: f.OriginalOwner, RepoName: f.OriginalRepo}
}

// Copy returns the key of the fork itself.
func (f Fork) Copy() RepoKey {
	return RepoKey{Owner: f.ForkOwner, RepoName: f.ForkRepo}
}

// Star records that Username starred RepoOwner/RepoName.
type Star struct {
	Username  string    `json:"username" validate:"required,slug"`
	RepoOwner string    `json:"repo_owner" validate:"required,slug"`
	RepoName  string    `json:"repo_name" validate:"required,slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repo returns the key of the starred repository.
func (s Star) Repo() RepoKey {
	return RepoKey{Owner: s.RepoOwner, RepoName: s.RepoName}
}
