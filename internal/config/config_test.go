package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != Default().ServerURL {
		t.Errorf("ServerURL = %q, want default", cfg.ServerURL)
	}
	if cfg.DailyNew != 10 {
		t.Errorf("DailyNew = %d, want 10", cfg.DailyNew)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "server_url = \"http://localhost:8080\"\naccent = \"uk\"\ndaily_new = 5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8080" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.Accent != "uk" {
		t.Errorf("Accent = %q, want uk", cfg.Accent)
	}
	if cfg.DailyNew != 5 {
		t.Errorf("DailyNew = %d, want 5", cfg.DailyNew)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("locale = \"en\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ISPELL_LOCALE", "zh")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Locale != "zh" {
		t.Errorf("Locale = %q, want zh", cfg.Locale)
	}
}

func TestLoad_InvalidAccent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("accent = \"au\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid accent")
	}
}

func TestOrigin_FallsBackToServerURL(t *testing.T) {
	cfg := Config{ServerURL: "https://api.example.com"}
	if got := cfg.Origin(); got != "https://api.example.com" {
		t.Errorf("Origin() = %q", got)
	}
	cfg.TrustedOrigin = "https://auth.example.com"
	if got := cfg.Origin(); got != "https://auth.example.com" {
		t.Errorf("Origin() = %q", got)
	}
}
