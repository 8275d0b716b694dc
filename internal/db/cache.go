package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/marcus/sbx/internal/api"
)

// RecentSandbox is a sandbox the user opened from this machine.
type RecentSandbox struct {
	ID       string
	Title    string
	Template string
	AuthorID string
	OpenedAt time.Time
}

// SaveUser caches the signed-in user, replacing any previous one.
func (db *DB) SaveUser(u *api.User) error {
	_, err := db.conn.Exec(`
		INSERT INTO cached_user (slot, id, username, name, email, avatar_url, cached_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			id = excluded.id,
			username = excluded.username,
			name = excluded.name,
			email = excluded.email,
			avatar_url = excluded.avatar_url,
			cached_at = excluded.cached_at`,
		u.ID, u.Username, u.Name, u.Email, u.AvatarURL, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// GetUser returns the cached user or ErrNotFound.
func (db *DB) GetUser() (*api.User, error) {
	var u api.User
	err := db.conn.QueryRow(`SELECT id, username, name, email, avatar_url FROM cached_user WHERE slot = 1`).
		Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ClearUser forgets the cached user.
func (db *DB) ClearUser() error {
	if _, err := db.conn.Exec(`DELETE FROM cached_user`); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	return nil
}

// TouchRecent records that a sandbox was opened now.
func (db *DB) TouchRecent(sb api.Sandbox) error {
	return db.touchRecentAt(sb, time.Now())
}

func (db *DB) touchRecentAt(sb api.Sandbox, at time.Time) error {
	_, err := db.conn.Exec(`
		INSERT INTO recent_sandboxes (id, title, template, author_id, opened_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			template = excluded.template,
			author_id = excluded.author_id,
			opened_at = excluded.opened_at`,
		sb.ID, sb.Title, sb.Template, sb.AuthorID, formatTime(at))
	if err != nil {
		return fmt.Errorf("touch recent %s: %w", sb.ID, err)
	}
	return nil
}

// ListRecent returns the most recently opened sandboxes, newest first.
func (db *DB) ListRecent(limit int) ([]RecentSandbox, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.Query(`
		SELECT id, title, template, author_id, opened_at
		FROM recent_sandboxes
		ORDER BY opened_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	defer rows.Close()

	var out []RecentSandbox
	for rows.Next() {
		var r RecentSandbox
		var openedAt string
		if err := rows.Scan(&r.ID, &r.Title, &r.Template, &r.AuthorID, &openedAt); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		r.OpenedAt = parseTime(openedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RemoveRecent drops a sandbox from the recent list.
func (db *DB) RemoveRecent(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM recent_sandboxes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove recent %s: %w", id, err)
	}
	return nil
}

// timeLayout is fixed-width so that ORDER BY on the text column is
// chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
