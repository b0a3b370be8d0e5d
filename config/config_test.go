package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != "localhost:8080" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, "localhost:8080")
	}
	if cfg.APIBaseURL != "http://localhost:3000" {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, "http://localhost:3000")
	}
	if cfg.PageSize != 5 {
		t.Errorf("PageSize = %d, want 5", cfg.PageSize)
	}
	if cfg.FetchTimeoutSecs != 10 {
		t.Errorf("FetchTimeoutSecs = %d, want 10", cfg.FetchTimeoutSecs)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.DBPath != "./newsweb.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./newsweb.db")
	}
	if cfg.IdentityPath == "" {
		t.Error("IdentityPath default not applied")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != "localhost:8080" {
		t.Errorf("ListenAddr = %q, want default", cfg.ListenAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
listen_addr: "127.0.0.1:9999"
api_base_url: "http://example.com:4000"
page_size: 20
log_level: "debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9999" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.APIBaseURL != "http://example.com:4000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.PageSize != 20 {
		t.Errorf("PageSize = %d, want 20", cfg.PageSize)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("NEWSWEB_API_BASE_URL", "http://127.0.0.1:5000")
	t.Setenv("NEWSWEB_DB", "/tmp/other.db")
	t.Setenv("NEWSWEB_IDENTITY", "/tmp/id.json")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIBaseURL != "http://127.0.0.1:5000" {
		t.Errorf("APIBaseURL = %q, env override not applied", cfg.APIBaseURL)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Errorf("DBPath = %q, env override not applied", cfg.DBPath)
	}
	if cfg.IdentityPath != "/tmp/id.json" {
		t.Errorf("IdentityPath = %q, env override not applied", cfg.IdentityPath)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"relative base url", `api_base_url: "not a url"`},
		{"bad page size", `page_size: 7`},
		{"bad log level", `log_level: "loud"`},
		{"bad timeout", `fetch_timeout_secs: -1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(configPath); err == nil {
				t.Errorf("Load(%q) succeeded, want validation error", tt.content)
			}
		})
	}
}
