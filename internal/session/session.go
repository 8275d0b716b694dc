// Package session persists the editor session identity and the API token
// of the signed-in user.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const sessionFile = "session"

// Session represents the current editor session
type Session struct {
	ID        string
	StartedAt time.Time
	Token     string
}

// SignedIn reports whether a token is stored.
func (s *Session) SignedIn() bool {
	return s != nil && s.Token != ""
}

// GetOrCreate returns the current session, creating one if necessary
func GetOrCreate(baseDir string) (*Session, error) {
	sess, err := read(baseDir)
	if err == nil {
		return sess, nil
	}

	sess = &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := Save(baseDir, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Save writes the session to disk. The file holds the token, so it is
// only readable by the owner.
func Save(baseDir string, sess *Session) error {
	sessionPath := filepath.Join(baseDir, sessionFile)

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	content := fmt.Sprintf("%s\n%s\n%s\n", sess.ID, sess.StartedAt.Format(time.RFC3339), sess.Token)
	if err := os.WriteFile(sessionPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// SetToken stores the API token on the current session.
func SetToken(baseDir, token string) (*Session, error) {
	sess, err := GetOrCreate(baseDir)
	if err != nil {
		return nil, err
	}

	sess.Token = strings.TrimSpace(token)
	if err := Save(baseDir, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ClearToken signs the session out while keeping its ID.
func ClearToken(baseDir string) error {
	_, err := SetToken(baseDir, "")
	return err
}

func read(baseDir string) (*Session, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, sessionFile))
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("invalid session file")
	}

	sess := &Session{ID: strings.TrimSpace(lines[0])}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(lines[1])); err == nil {
		sess.StartedAt = t
	}
	if len(lines) >= 3 {
		sess.Token = strings.TrimSpace(lines[2])
	}
	return sess, nil
}
