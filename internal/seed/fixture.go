// Package seed loads YAML fixtures of accounts, repositories, issues and pull
// requests through the service layer, so every write goes through the same
// validation and conditional checks as production traffic.
package seed

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github-ddb-backend/internal/domain"
)

// Fixture is the document read by Parse.
type Fixture struct {
	Users         []User         `yaml:"users"`
	Organizations []Organization `yaml:"organizations"`
	Repositories  []Repository   `yaml:"repositories"`
	Forks         []Fork         `yaml:"forks"`
	Stars         []Star         `yaml:"stars"`
	Issues        []Issue        `yaml:"issues"`
	PullRequests  []PullRequest  `yaml:"pull_requests"`
}

type User struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Bio      string `yaml:"bio"`
	Plan     string `yaml:"plan"`
}

type Organization struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Plan        string `yaml:"plan"`
}

type Repository struct {
	// Name is "owner/repo".
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	Private     bool   `yaml:"private"`
}

type Fork struct {
	Original string `yaml:"original"`
	Fork     string `yaml:"fork"`
}

type Star struct {
	User       string `yaml:"user"`
	Repository string `yaml:"repository"`
}

type Comment struct {
	Author    string     `yaml:"author"`
	Body      string     `yaml:"body"`
	Reactions []Reaction `yaml:"reactions"`
}

type Reaction struct {
	User  string `yaml:"user"`
	Emoji string `yaml:"emoji"`
}

type Issue struct {
	Repository string     `yaml:"repository"`
	Title      string     `yaml:"title"`
	Body       string     `yaml:"body"`
	Author     string     `yaml:"author"`
	Status     string     `yaml:"status"`
	Assignees  []string   `yaml:"assignees"`
	Labels     []string   `yaml:"labels"`
	Comments   []Comment  `yaml:"comments"`
	Reactions  []Reaction `yaml:"reactions"`
}

type PullRequest struct {
	Repository   string     `yaml:"repository"`
	Title        string     `yaml:"title"`
	Body         string     `yaml:"body"`
	Author       string     `yaml:"author"`
	SourceBranch string     `yaml:"source_branch"`
	TargetBranch string     `yaml:"target_branch"`
	MergeCommit  string     `yaml:"merge_commit"` // empty leaves the pull request open
	Comments     []Comment  `yaml:"comments"`
	Reactions    []Reaction `yaml:"reactions"`
}

// Parse decodes a fixture. Unknown fields are rejected so typos in a fixture
// do not silently drop data.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

// ParseRepoKey splits "owner/repo".
func ParseRepoKey(s string) (domain.RepoKey, error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return domain.RepoKey{}, fmt.Errorf("repository %q is not of the form owner/repo", s)
	}
	return domain.RepoKey{Owner: owner, RepoName: name}, nil
}
