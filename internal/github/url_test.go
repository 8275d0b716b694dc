package github

import (
	"errors"
	"testing"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		in   string
		want Repo
	}{
		{"https://github.com/acme/widgets", Repo{Owner: "acme", Name: "widgets"}},
		{"http://www.github.com/acme/widgets.git", Repo{Owner: "acme", Name: "widgets"}},
		{"github.com/acme/widgets/", Repo{Owner: "acme", Name: "widgets"}},
		{"acme/widgets", Repo{Owner: "acme", Name: "widgets"}},
		{"git@github.com:acme/widgets.git", Repo{Owner: "acme", Name: "widgets"}},
		{"https://github.com/acme/widgets/tree/main", Repo{Owner: "acme", Name: "widgets", Branch: "main"}},
		{"https://github.com/acme/widgets/tree/dev/examples/basic", Repo{Owner: "acme", Name: "widgets", Branch: "dev", Path: "examples/basic"}},
		{"https://github.com/acme/widgets/blob/main/README.md", Repo{Owner: "acme", Name: "widgets", Branch: "main", Path: "README.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseURL(tt.in)
			if err != nil {
				t.Fatalf("ParseURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseURLInvalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"https://gitlab.com/acme/widgets",
		"https://github.com/acme",
		"https://github.com/acme/widgets/issues/4",
		"https://github.com/acme/widgets/tree",
		"acme/wid gets",
	}
	for _, in := range inputs {
		if _, err := ParseURL(in); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("ParseURL(%q) err = %v, want ErrInvalidURL", in, err)
		}
	}
}

func TestRepoPaths(t *testing.T) {
	r := Repo{Owner: "acme", Name: "widgets", Branch: "main", Path: "app"}
	if got := r.ImportPath(); got != "github/acme/widgets/tree/main/app" {
		t.Errorf("ImportPath = %q", got)
	}
	if got := r.URL(); got != "https://github.com/acme/widgets/tree/main/app" {
		t.Errorf("URL = %q", got)
	}
	if got := (Repo{Owner: "a", Name: "b", Path: "ignored"}).RoutePath(); got != "a/b" {
		t.Errorf("RoutePath without branch = %q", got)
	}
}
