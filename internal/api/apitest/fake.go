// Package apitest runs an in-memory sandbox service for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marcus/sbx/internal/api"
)

// Token is the bearer token the fake accepts for the default user.
const Token = "test-token"

// Service is a fake sandbox service backed by maps.
type Service struct {
	URL string

	mu        sync.Mutex
	user      api.User
	sandboxes map[string]*api.Sandbox
	order     []string
	nextID    int
	calls     map[string]int
	failWith  map[string]int
	srv       *httptest.Server
}

// NewService starts a fake service that is closed with the test.
func NewService(t *testing.T) *Service {
	t.Helper()

	s := &Service{
		user:      api.User{ID: "u1", Username: "ada", Name: "Ada Lovelace"},
		sandboxes: make(map[string]*api.Sandbox),
		calls:     make(map[string]int),
		failWith:  make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/users/current", s.auth(s.handleCurrentUser))
	mux.HandleFunc("GET /api/v1/sandboxes", s.auth(s.handleList))
	mux.HandleFunc("GET /api/v1/sandboxes/{id}", s.handleGet)
	mux.HandleFunc("PATCH /api/v1/sandboxes/{id}", s.auth(s.handleUpdate))
	mux.HandleFunc("DELETE /api/v1/sandboxes/{id}", s.auth(s.handleDelete))
	mux.HandleFunc("POST /api/v1/sandboxes/{id}/fork", s.auth(s.handleFork))
	mux.HandleFunc("POST /api/v1/import/{path...}", s.auth(s.handleImport))

	s.srv = httptest.NewServer(mux)
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

// Close stops the server early, e.g. to simulate the service being down.
func (s *Service) Close() {
	s.srv.Close()
}

// User returns the fake's signed-in user.
func (s *Service) User() api.User {
	return s.user
}

// AddSandbox stores a sandbox. Empty IDs are assigned.
func (s *Service) AddSandbox(sb api.Sandbox) api.Sandbox {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.addLocked(sb)
}

func (s *Service) addLocked(sb api.Sandbox) *api.Sandbox {
	if sb.ID == "" {
		s.nextID++
		sb.ID = fmt.Sprintf("sb%d", s.nextID)
	}
	if sb.UpdatedAt.IsZero() {
		sb.UpdatedAt = time.Date(2026, 1, 1, 0, 0, len(s.order), 0, time.UTC)
	}
	stored := sb
	s.sandboxes[sb.ID] = &stored
	s.order = append(s.order, sb.ID)
	return &stored
}

// Sandbox returns a stored sandbox.
func (s *Service) Sandbox(id string) (api.Sandbox, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sb, ok := s.sandboxes[id]
	if !ok {
		return api.Sandbox{}, false
	}
	return *sb, true
}

// Calls returns how often a route name was hit ("current", "list", "get",
// "update", "delete", "fork", "import").
func (s *Service) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// FailNext makes every request to route name answer with status.
func (s *Service) FailNext(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith[name] = status
}

func (s *Service) hit(w http.ResponseWriter, name string) bool {
	s.mu.Lock()
	s.calls[name]++
	status := s.failWith[name]
	s.mu.Unlock()
	if status != 0 {
		writeError(w, "injected", http.StatusText(status), status)
		return true
	}
	return false
}

func (s *Service) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeError(w, "unauthorized", "invalid or missing token", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Service) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	if s.hit(w, "current") {
		return
	}
	writeSuccess(w, s.user, http.StatusOK)
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	if s.hit(w, "list") {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := api.SandboxList{Page: 1, Sandboxes: []api.Sandbox{}}
	for _, id := range s.order {
		sb, ok := s.sandboxes[id]
		if ok && sb.AuthorID == s.user.ID {
			list.Sandboxes = append(list.Sandboxes, *sb)
		}
	}
	list.TotalCount = len(list.Sandboxes)
	writeSuccess(w, list, http.StatusOK)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.hit(w, "get") {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sb, ok := s.sandboxes[r.PathValue("id")]
	if !ok {
		writeError(w, "not_found", "sandbox not found", http.StatusNotFound)
		return
	}
	writeSuccess(w, sb, http.StatusOK)
}

func (s *Service) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.hit(w, "update") {
		return
	}
	var body struct {
		Title    *string `json:"title"`
		IsFrozen *bool   `json:"is_frozen"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, "validation_error", "invalid JSON body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sb, ok := s.sandboxes[r.PathValue("id")]
	if !ok {
		writeError(w, "not_found", "sandbox not found", http.StatusNotFound)
		return
	}
	if sb.AuthorID != s.user.ID {
		writeError(w, "forbidden", "not the sandbox owner", http.StatusForbidden)
		return
	}
	if body.Title != nil {
		sb.Title = *body.Title
	}
	if body.IsFrozen != nil {
		sb.IsFrozen = *body.IsFrozen
	}
	writeSuccess(w, sb, http.StatusOK)
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.hit(w, "delete") {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.PathValue("id")
	if _, ok := s.sandboxes[id]; !ok {
		writeError(w, "not_found", "sandbox not found", http.StatusNotFound)
		return
	}
	delete(s.sandboxes, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleFork(w http.ResponseWriter, r *http.Request) {
	if s.hit(w, "fork") {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sandboxes[r.PathValue("id")]
	if !ok {
		writeError(w, "not_found", "sandbox not found", http.StatusNotFound)
		return
	}
	fork := *src
	fork.ID = ""
	fork.AuthorID = s.user.ID
	fork.ForkedFrom = src.ID
	fork.IsFrozen = false
	fork.UpdatedAt = time.Time{}
	writeSuccess(w, s.addLocked(fork), http.StatusCreated)
}

func (s *Service) handleImport(w http.ResponseWriter, r *http.Request) {
	if s.hit(w, "import") {
		return
	}
	path := r.PathValue("path")
	if !strings.HasPrefix(path, "github/") {
		writeError(w, "validation_error", "unsupported source", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sb := s.addLocked(api.Sandbox{
		Title:    strings.TrimPrefix(path, "github/"),
		Template: "node",
		AuthorID: s.user.ID,
	})
	writeSuccess(w, sb, http.StatusCreated)
}

func writeSuccess(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "data": data})
}

func writeError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"ok":    false,
		"error": map[string]string{"code": code, "message": message},
	})
}
