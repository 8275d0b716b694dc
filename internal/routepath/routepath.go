// Package routepath stores the canonical editor routes and resolves a path
// to the page that renders it.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root            = "/"
	Dashboard       = "/dashboard"
	DashboardSearch = "/dashboard/search"
	SignIn          = "/signin"
	SandboxPrefix   = "/s/"
	SandboxPattern  = SandboxPrefix + "{id}"
	ImportGitHub    = "/import/github"
	ImportPrefix    = ImportGitHub + "/"
	ImportPattern   = ImportPrefix + "{owner}/{repo}/{rest...}"
)

// Kind identifies the page a route renders.
type Kind int

const (
	NotFound Kind = iota
	DashboardPage
	SearchPage
	SandboxPage
	ImportFormPage
	ImportRepoPage
	SignInPage
)

func (k Kind) String() string {
	switch k {
	case DashboardPage:
		return "dashboard"
	case SearchPage:
		return "search"
	case SandboxPage:
		return "sandbox"
	case ImportFormPage:
		return "import-form"
	case ImportRepoPage:
		return "import-repo"
	case SignInPage:
		return "signin"
	default:
		return "not-found"
	}
}

// Route is a matched path.
type Route struct {
	Kind   Kind
	Path   string
	Params map[string]string
}

// Param returns a path parameter or "".
func (r Route) Param(name string) string {
	return r.Params[name]
}

// Sandbox returns the route for a sandbox.
func Sandbox(id string) string {
	return SandboxPrefix + escapeSegment(id)
}

// Import returns the direct-import route for a repository path such as
// "owner/repo/tree/main/app".
func Import(repoPath string) string {
	return ImportPrefix + strings.Trim(repoPath, "/")
}

// Search returns the dashboard search route with query q.
func Search(q string) string {
	if q == "" {
		return DashboardSearch
	}
	return DashboardSearch + "?q=" + url.QueryEscape(q)
}

// Match resolves a path. Unknown paths return a NotFound route and false.
func Match(raw string) (Route, bool) {
	path, query, _ := strings.Cut(raw, "?")
	if path == "" {
		path = Root
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	route := Route{Path: raw, Params: map[string]string{}}

	switch {
	case path == Root || path == Dashboard:
		route.Kind = DashboardPage
	case path == DashboardSearch:
		route.Kind = SearchPage
		if values, err := url.ParseQuery(query); err == nil {
			route.Params["q"] = values.Get("q")
		}
	case path == SignIn:
		route.Kind = SignInPage
	case path == ImportGitHub:
		route.Kind = ImportFormPage
	case strings.HasPrefix(path, SandboxPrefix):
		id, err := url.PathUnescape(strings.TrimPrefix(path, SandboxPrefix))
		if err != nil || id == "" || strings.Contains(id, "/") {
			return route, false
		}
		route.Kind = SandboxPage
		route.Params["id"] = id
	case strings.HasPrefix(path, ImportPrefix):
		parts := strings.SplitN(strings.TrimPrefix(path, ImportPrefix), "/", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return route, false
		}
		route.Kind = ImportRepoPage
		route.Params["owner"] = parts[0]
		route.Params["repo"] = parts[1]
		if len(parts) == 3 {
			route.Params["rest"] = parts[2]
		}
	default:
		return route, false
	}
	return route, true
}

func escapeSegment(value string) string {
	return url.PathEscape(strings.TrimSpace(value))
}
