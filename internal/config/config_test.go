package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LISTEN_ADDR", "DB_TYPE", "DB_DSN", "DATABASE_PATH", "SESSION_SECRET",
		"GIN_MODE", "ADMIN_USERNAME", "ADMIN_PASSWORD", "SECRET", "ADMIN_PASSWORD_HASH",
		"SITE_NAME", "MEDIA_DIR", "MEDIA_URL_PATH",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected listen addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseType != "sqlite" || cfg.DatabaseDSN != "folio.db" {
		t.Fatalf("unexpected database defaults: %q %q", cfg.DatabaseType, cfg.DatabaseDSN)
	}
	if cfg.AdminUsername != "admin" {
		t.Fatalf("expected default admin username, got %q", cfg.AdminUsername)
	}
	if cfg.AdminEnabled() {
		t.Fatal("expected admin to be disabled without a secret")
	}
	if cfg.MediaURLPath != "/media" {
		t.Fatalf("expected media url path /media, got %q", cfg.MediaURLPath)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("site_name: From File\nport: \"9000\"\nmedia_url_path: pictures/\nadmin_password: file-secret\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SITE_NAME", "From Env")
	t.Setenv("SECRET", "env-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.SiteName != "From Env" {
		t.Fatalf("expected env to win, got %q", cfg.SiteName)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected listen addr from file port, got %q", cfg.ListenAddr)
	}
	if cfg.AdminPassword != "env-secret" {
		t.Fatalf("expected SECRET to override file password, got %q", cfg.AdminPassword)
	}
	if cfg.MediaURLPath != "/pictures" {
		t.Fatalf("expected normalized media path, got %q", cfg.MediaURLPath)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("site_name: [unterminated"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
