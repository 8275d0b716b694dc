package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestGetOrCreate(t *testing.T) {
	dir := t.TempDir()

	sess, err := GetOrCreate(dir)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", sess.ID, err)
	}
	if sess.SignedIn() {
		t.Error("new session should be signed out")
	}

	again, err := GetOrCreate(dir)
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if again.ID != sess.ID {
		t.Errorf("ID changed: %q -> %q", sess.ID, again.ID)
	}
	if !again.StartedAt.Equal(sess.StartedAt) {
		t.Errorf("StartedAt changed: %v -> %v", sess.StartedAt, again.StartedAt)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	dir := t.TempDir()

	sess, err := SetToken(dir, "  secret\n")
	if err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if sess.Token != "secret" {
		t.Errorf("Token = %q, want trimmed", sess.Token)
	}

	info, err := os.Stat(filepath.Join(dir, sessionFile))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	loaded, err := GetOrCreate(dir)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !loaded.SignedIn() || loaded.ID != sess.ID {
		t.Errorf("loaded = %+v, want signed-in %s", loaded, sess.ID)
	}

	if err := ClearToken(dir); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	loaded, _ = GetOrCreate(dir)
	if loaded.SignedIn() {
		t.Error("still signed in after ClearToken")
	}
	if loaded.ID != sess.ID {
		t.Error("ClearToken replaced the session ID")
	}
}

func TestCorruptFileIsReplaced(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, sessionFile), []byte("\n"), 0600); err != nil {
		t.Fatalf("setup: write failed: %v", err)
	}

	sess, err := GetOrCreate(dir)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if sess.ID == "" {
		t.Error("empty ID after recovering from corrupt file")
	}
}
