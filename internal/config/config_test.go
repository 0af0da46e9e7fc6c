package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Auth.AccessTTL != 72*time.Hour {
		t.Fatalf("access ttl = %v, want 72h", cfg.Auth.AccessTTL)
	}
	if cfg.Auth.RefreshTTL != 168*time.Hour {
		t.Fatalf("refresh ttl = %v, want 168h", cfg.Auth.RefreshTTL)
	}
	if cfg.Auth.AccessCookieTTL != 24*time.Hour {
		t.Fatalf("access cookie ttl = %v, want 24h", cfg.Auth.AccessCookieTTL)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("addr = %q, want :8080", cfg.HTTP.Addr)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("http:\n  addr: \":9090\"\nauth:\n  access_secret: file-secret\n  access_ttl: 1h\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("addr = %q, want :9090", cfg.HTTP.Addr)
	}
	if cfg.Auth.AccessSecret != "file-secret" {
		t.Fatalf("access secret = %q, want file-secret", cfg.Auth.AccessSecret)
	}
	if cfg.Auth.AccessTTL != time.Hour {
		t.Fatalf("access ttl = %v, want 1h", cfg.Auth.AccessTTL)
	}
	// Untouched keys keep their defaults.
	if cfg.Auth.RefreshTTL != 168*time.Hour {
		t.Fatalf("refresh ttl = %v, want 168h", cfg.Auth.RefreshTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("AUTH_ACCESS_SECRET", "env-access")
	t.Setenv("AUTH_REFRESH_SECRET", "env-refresh")
	t.Setenv("AUTH_ACCESS_TTL", "2h")
	t.Setenv("LOGIN_PER_MINUTE", "5")
	t.Setenv("S3_USE_SSL", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("addr = %q, want :7070", cfg.HTTP.Addr)
	}
	if cfg.Auth.AccessSecret != "env-access" || cfg.Auth.RefreshSecret != "env-refresh" {
		t.Fatalf("secrets not overridden: %+v", cfg.Auth)
	}
	if cfg.Auth.AccessTTL != 2*time.Hour {
		t.Fatalf("access ttl = %v, want 2h", cfg.Auth.AccessTTL)
	}
	if cfg.Limits.LoginPerMinute != 5 {
		t.Fatalf("login per minute = %d, want 5", cfg.Limits.LoginPerMinute)
	}
	if !cfg.S3.UseSSL {
		t.Fatal("s3 use_ssl not overridden")
	}
}

func TestLoadRejectsBadEnvValues(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TTL", "not-a-duration")
	if _, err := Load(""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Auth.AccessSecret = "a"
	valid.Auth.RefreshSecret = "r"

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	missingAccess := valid
	missingAccess.Auth.AccessSecret = ""
	if err := missingAccess.Validate(); err == nil {
		t.Fatal("expected error for missing access secret")
	}

	missingRefresh := valid
	missingRefresh.Auth.RefreshSecret = ""
	if err := missingRefresh.Validate(); err == nil {
		t.Fatal("expected error for missing refresh secret")
	}

	badTTL := valid
	badTTL.Auth.AccessTTL = 0
	if err := badTTL.Validate(); err == nil {
		t.Fatal("expected error for zero access ttl")
	}

	longCookie := valid
	longCookie.Auth.AccessCookieTTL = valid.Auth.AccessTTL + time.Hour
	if err := longCookie.Validate(); err == nil {
		t.Fatal("expected error for cookie ttl above token ttl")
	}
}
