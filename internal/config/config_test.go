package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Session.HistoryLimit != 50 {
		t.Errorf("history limit = %d, want 50", cfg.Session.HistoryLimit)
	}
	if cfg.RefreshInterval() != 5*time.Second {
		t.Errorf("refresh interval = %v, want 5s", cfg.RefreshInterval())
	}
	if cfg.SocketURL() != "ws://localhost:3000/ws" {
		t.Errorf("socket url = %q, want development default", cfg.SocketURL())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://admin.example.com"
timeout_seconds = 30

[channel]
url = "wss://push.example.com/ws"

[session]
admin_id = 7
history_limit = 100
refresh_interval_seconds = 10
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "https://admin.example.com" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.SocketURL() != "wss://push.example.com/ws" {
		t.Errorf("socket url = %q, want configured override", cfg.SocketURL())
	}
	if cfg.Session.AdminID != 7 || cfg.Session.HistoryLimit != 100 {
		t.Errorf("session config = %+v", cfg.Session)
	}
	if cfg.APITimeout() != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.APITimeout())
	}
}

func TestEnvOverridesBeatConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[channel]\nurl = \"wss://from-file/ws\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvSocketURL, "wss://from-env/ws")
	t.Setenv(EnvAPIURL, "https://api-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SocketURL() != "wss://from-env/ws" {
		t.Errorf("socket url = %q, want env override", cfg.SocketURL())
	}
	if cfg.API.BaseURL != "https://api-from-env" {
		t.Errorf("api url = %q, want env override", cfg.API.BaseURL)
	}
}

func TestProductionDefaultSocketURL(t *testing.T) {
	t.Setenv(EnvMode, "production")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SocketURL() != "wss://app-trader.railway.internal/ws" {
		t.Errorf("socket url = %q, want production default", cfg.SocketURL())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	in := Default()
	in.Session.AdminID = 3
	if err := Save(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Session.AdminID != 3 {
		t.Errorf("admin id = %d, want 3", out.Session.AdminID)
	}
}
