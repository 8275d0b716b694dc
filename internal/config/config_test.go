package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marcus/sbx/pkg/modals"
)

func TestLoad(t *testing.T) {
	t.Run("non-existent file returns defaults", func(t *testing.T) {
		cfg, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.APIURL != DefaultAPIURL {
			t.Errorf("APIURL = %q, want %q", cfg.APIURL, DefaultAPIURL)
		}
		if cfg.RequestTimeout != 15*time.Second {
			t.Errorf("RequestTimeout = %v, want 15s", cfg.RequestTimeout)
		}
		if cfg.Dashboard.PageSize != 50 {
			t.Errorf("PageSize = %d, want 50", cfg.Dashboard.PageSize)
		}
		if p, _ := cfg.SupersedePolicy(); p != modals.SupersedeOrphan {
			t.Errorf("SupersedePolicy = %v, want orphan", p)
		}
	})

	t.Run("existing file", func(t *testing.T) {
		dir := t.TempDir()
		data := `{
  "api_url": "http://localhost:3000",
  "log_level": "debug",
  "request_timeout": "3s",
  "modal": {"supersede": "cancel"},
  "dashboard": {"page_size": 10}
}`
		if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0644); err != nil {
			t.Fatalf("setup: write failed: %v", err)
		}

		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.APIURL != "http://localhost:3000" {
			t.Errorf("APIURL = %q", cfg.APIURL)
		}
		if cfg.SlogLevel() != slog.LevelDebug {
			t.Errorf("SlogLevel = %v, want debug", cfg.SlogLevel())
		}
		if cfg.RequestTimeout != 3*time.Second {
			t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
		}
		if p, _ := cfg.SupersedePolicy(); p != modals.SupersedeCancel {
			t.Errorf("SupersedePolicy = %v, want cancel", p)
		}
		if cfg.Dashboard.PageSize != 10 || cfg.Dashboard.RecentLimit != 5 {
			t.Errorf("Dashboard = %+v, want page_size 10 and default recent_limit", cfg.Dashboard)
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("SBX_API_URL", "http://env.example")
		t.Setenv("SBX_MODAL_SUPERSEDE", "cancel")
		t.Setenv("SBX_TOKEN", "env-token")

		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.APIURL != "http://env.example" {
			t.Errorf("APIURL = %q", cfg.APIURL)
		}
		if cfg.Modal.Supersede != "cancel" {
			t.Errorf("Supersede = %q", cfg.Modal.Supersede)
		}
		if cfg.Token != "env-token" {
			t.Errorf("Token = %q", cfg.Token)
		}
	})

	t.Run("invalid supersede policy", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"modal":{"supersede":"drop"}}`), 0644); err != nil {
			t.Fatalf("setup: write failed: %v", err)
		}
		if _, err := Load(dir); err == nil {
			t.Error("Load accepted an unknown supersede policy")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644); err != nil {
			t.Fatalf("setup: write failed: %v", err)
		}
		if _, err := Load(dir); err == nil {
			t.Error("Load accepted malformed JSON")
		}
	})
}

func TestSaveAndSet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sbx")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Theme = "light"
	cfg.Token = "must-not-persist"
	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := Set(dir, "modal.supersede", "cancel"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := Set(dir, "modal.supersede", "bogus"); err == nil {
		t.Error("Set accepted an invalid policy")
	}
	if err := Set(dir, "nope", "x"); err == nil {
		t.Error("Set accepted an unknown key")
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}
	if loaded.Theme != "light" {
		t.Errorf("Theme = %q, want light", loaded.Theme)
	}
	if loaded.Modal.Supersede != "cancel" {
		t.Errorf("Supersede = %q, want cancel", loaded.Modal.Supersede)
	}
	if loaded.Token != "" {
		t.Errorf("Token persisted: %q", loaded.Token)
	}
}

func TestSetKeepsEnvOverridesOutOfFile(t *testing.T) {
	dir := t.TempDir()
	if err := Set(dir, "api_url", "https://sandbox.example"); err != nil {
		t.Fatalf("Set api_url: %v", err)
	}

	t.Setenv("SBX_API_URL", "http://staging.invalid")
	t.Setenv("SBX_DASHBOARD_PAGE_SIZE", "7")
	if err := Set(dir, "theme", "light"); err != nil {
		t.Fatalf("Set theme: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if strings.Contains(string(data), "staging.invalid") {
		t.Errorf("environment api_url written to config file:\n%s", data)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://staging.invalid" || cfg.Dashboard.PageSize != 7 {
		t.Errorf("env overrides not applied on Load: api_url=%q page_size=%d", cfg.APIURL, cfg.Dashboard.PageSize)
	}

	os.Unsetenv("SBX_API_URL")
	os.Unsetenv("SBX_DASHBOARD_PAGE_SIZE")
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("Load without env: %v", err)
	}
	if cfg.APIURL != "https://sandbox.example" {
		t.Errorf("APIURL = %q, want the stored https://sandbox.example", cfg.APIURL)
	}
	if cfg.Dashboard.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.Dashboard.PageSize)
	}
	if cfg.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.Theme)
	}
}
