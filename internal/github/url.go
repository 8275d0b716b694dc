// Package github parses GitHub repository URLs for sandbox imports.
package github

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidURL is returned for input that does not name a GitHub repository.
var ErrInvalidURL = errors.New("not a GitHub repository URL")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Repo identifies a repository, optionally narrowed to a branch and a
// directory inside it.
type Repo struct {
	Owner  string
	Name   string
	Branch string
	Path   string
}

// FullName returns "owner/name".
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// ImportPath renders the repository as the import API expects it:
// "github/owner/name[/tree/branch[/path]]".
func (r Repo) ImportPath() string {
	return "github/" + r.RoutePath()
}

// RoutePath renders "owner/name[/tree/branch[/path]]".
func (r Repo) RoutePath() string {
	p := r.FullName()
	if r.Branch != "" {
		p += "/tree/" + r.Branch
		if r.Path != "" {
			p += "/" + r.Path
		}
	}
	return p
}

// URL returns the canonical https URL.
func (r Repo) URL() string {
	return "https://github.com/" + r.RoutePath()
}

// ParseURL accepts https://github.com/owner/repo, github.com/owner/repo,
// owner/repo, a trailing .git, and /tree/<branch>/<path> or
// /blob/<branch>/<path> suffixes.
func ParseURL(raw string) (Repo, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Repo{}, fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	if strings.HasPrefix(s, "git@github.com:") {
		s = "github.com/" + strings.TrimPrefix(s, "git@github.com:")
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Repo{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
		host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		if host != "github.com" {
			return Repo{}, fmt.Errorf("%w: host %q", ErrInvalidURL, u.Host)
		}
		s = u.Path
	} else {
		lower := strings.ToLower(s)
		for _, prefix := range []string{"www.github.com/", "github.com/"} {
			if strings.HasPrefix(lower, prefix) {
				s = s[len(prefix):]
				break
			}
		}
	}

	return ParsePath(s)
}

// ParsePath parses "owner/repo[/tree/branch[/path]]" without a host.
func ParsePath(p string) (Repo, error) {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) < 2 {
		return Repo{}, fmt.Errorf("%w: missing owner or repository", ErrInvalidURL)
	}

	repo := Repo{
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
	}
	if !namePattern.MatchString(repo.Owner) || !namePattern.MatchString(repo.Name) {
		return Repo{}, fmt.Errorf("%w: bad owner or repository name", ErrInvalidURL)
	}

	rest := parts[2:]
	if len(rest) == 0 {
		return repo, nil
	}
	if rest[0] != "tree" && rest[0] != "blob" {
		return Repo{}, fmt.Errorf("%w: unexpected segment %q", ErrInvalidURL, rest[0])
	}
	if len(rest) < 2 || rest[1] == "" {
		return Repo{}, fmt.Errorf("%w: missing branch", ErrInvalidURL)
	}
	repo.Branch = rest[1]
	repo.Path = strings.Join(rest[2:], "/")
	return repo, nil
}
