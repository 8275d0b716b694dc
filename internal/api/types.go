package api

import "time"

// User is the signed-in account.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Sandbox is a sandbox as returned by the service.
type Sandbox struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Template    string    `json:"template,omitempty"`
	AuthorID    string    `json:"author_id,omitempty"`
	ForkedFrom  string    `json:"forked_from,omitempty"`
	IsFrozen    bool      `json:"is_frozen"`
	Privacy     int       `json:"privacy"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayTitle returns the title, or the ID for untitled sandboxes.
func (s Sandbox) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.ID
}

// OwnedBy reports whether u authored the sandbox.
func (s Sandbox) OwnedBy(u *User) bool {
	return u != nil && s.AuthorID != "" && s.AuthorID == u.ID
}

// SandboxList is one page of the user's sandboxes.
type SandboxList struct {
	Sandboxes  []Sandbox `json:"sandboxes"`
	Page       int       `json:"page"`
	TotalCount int       `json:"total_count"`
}

// envelope mirrors the service response wrapper:
// {"ok": true, "data": ...} or {"ok": false, "error": {...}}.
type envelope[T any] struct {
	OK    bool          `json:"ok"`
	Data  T             `json:"data"`
	Error *errorPayload `json:"error,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
