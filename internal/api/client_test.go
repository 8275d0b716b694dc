package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/marcus/sbx/internal/api"
	"github.com/marcus/sbx/internal/api/apitest"
)

func TestCurrentUser(t *testing.T) {
	svc := apitest.NewService(t)
	ctx := context.Background()

	t.Run("authenticated", func(t *testing.T) {
		c := api.New(svc.URL, apitest.Token)
		u, err := c.CurrentUser(ctx)
		if err != nil {
			t.Fatalf("CurrentUser: %v", err)
		}
		if u.Username != "ada" {
			t.Errorf("Username = %q, want ada", u.Username)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		c := api.New(svc.URL, "nope")
		_, err := c.CurrentUser(ctx)
		if !errors.Is(err, api.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
		var apiErr *api.Error
		if !errors.As(err, &apiErr) || apiErr.Message != "invalid or missing token" {
			t.Errorf("error payload not decoded: %v", err)
		}
	})
}

func TestSandboxLifecycle(t *testing.T) {
	svc := apitest.NewService(t)
	ctx := context.Background()
	c := api.New(svc.URL, apitest.Token)

	mine := svc.AddSandbox(api.Sandbox{Title: "todo app", AuthorID: "u1"})
	theirs := svc.AddSandbox(api.Sandbox{Title: "starter", AuthorID: "u2"})

	list, err := c.ListSandboxes(ctx, 1, 20)
	if err != nil {
		t.Fatalf("ListSandboxes: %v", err)
	}
	if len(list.Sandboxes) != 1 || list.Sandboxes[0].ID != mine.ID {
		t.Fatalf("list = %+v, want only %s", list.Sandboxes, mine.ID)
	}

	fork, err := c.ForkSandbox(ctx, theirs.ID)
	if err != nil {
		t.Fatalf("ForkSandbox: %v", err)
	}
	if fork.ForkedFrom != theirs.ID || fork.AuthorID != "u1" {
		t.Errorf("fork = %+v", fork)
	}

	renamed, err := c.RenameSandbox(ctx, fork.ID, "my starter")
	if err != nil {
		t.Fatalf("RenameSandbox: %v", err)
	}
	if renamed.Title != "my starter" {
		t.Errorf("Title = %q", renamed.Title)
	}

	frozen, err := c.SetFrozen(ctx, fork.ID, true)
	if err != nil || !frozen.IsFrozen {
		t.Fatalf("SetFrozen = %+v, %v", frozen, err)
	}

	if err := c.DeleteSandbox(ctx, fork.ID); err != nil {
		t.Fatalf("DeleteSandbox: %v", err)
	}
	if _, err := c.GetSandbox(ctx, fork.ID); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("GetSandbox after delete err = %v, want ErrNotFound", err)
	}
}

func TestImportGitHub(t *testing.T) {
	svc := apitest.NewService(t)
	c := api.New(svc.URL, apitest.Token)

	sb, err := c.ImportGitHub(context.Background(), "github/acme/widgets/tree/main")
	if err != nil {
		t.Fatalf("ImportGitHub: %v", err)
	}
	if sb.Title != "acme/widgets/tree/main" {
		t.Errorf("Title = %q", sb.Title)
	}
	if svc.Calls("import") != 1 {
		t.Errorf("import calls = %d", svc.Calls("import"))
	}
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth, gotUA, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"ok":true,"data":{"id":"x","title":"renamed"}}`))
	}))
	defer srv.Close()

	c := api.New(srv.URL+"/", "tok", api.WithUserAgent("sbx/test"))
	sb, err := c.RenameSandbox(context.Background(), "x", "renamed")
	if err != nil {
		t.Fatalf("RenameSandbox: %v", err)
	}
	if sb.Title != "renamed" {
		t.Errorf("Title = %q", sb.Title)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotUA != "sbx/test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
}

func TestErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := api.New(srv.URL, "").GetSandbox(context.Background(), "x")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Fatalf("err = %v, want 502 *api.Error", err)
	}
	if !strings.Contains(err.Error(), "Bad Gateway") {
		t.Errorf("message = %q, want status text", err.Error())
	}
}

func TestSetTokenConcurrentWithRequests(t *testing.T) {
	svc := apitest.NewService(t)
	ctx := context.Background()
	c := api.New(svc.URL, "")

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				c.CurrentUser(ctx)
			}
		}()
	}
	for i := range 10 {
		if i%2 == 0 {
			c.SetToken(apitest.Token)
		} else {
			c.SetToken("")
		}
	}
	wg.Wait()

	c.SetToken(apitest.Token)
	if !c.HasToken() {
		t.Fatal("HasToken = false after SetToken")
	}
	if _, err := c.CurrentUser(ctx); err != nil {
		t.Errorf("CurrentUser: %v", err)
	}
}
