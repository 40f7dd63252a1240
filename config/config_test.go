package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
debug: false
storage:
  driver: redis
  redis_url: redis://localhost:6379/0
  key: from-file
notify:
  channel: toasts
server:
  listen_addr: ":9000"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("STORAGE_KEY", "from-env")
	t.Setenv("DEBUG", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != DriverRedis || cfg.Storage.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("file values not applied: %#v", cfg.Storage)
	}
	if cfg.Storage.Key != "from-env" {
		t.Fatalf("env should override file, got %q", cfg.Storage.Key)
	}
	if !cfg.Debug {
		t.Fatalf("DEBUG env not applied")
	}
	if cfg.Server.ListenAddr != ":9000" || cfg.Notify.Channel != "toasts" {
		t.Fatalf("unexpected values: %#v", cfg)
	}
	if cfg.Storage.SQLitePath != "data/tasks.db" {
		t.Fatalf("unset fields should keep defaults, got %q", cfg.Storage.SQLitePath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyEnvCacheTTL(t *testing.T) {
	env := map[string]string{"CACHE_TTL": "90s", "REDIS_CONNECTION_STRING": "localhost:6379"}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := Default()
	if err := applyEnv(&cfg, lookup); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Storage.CacheTTL != 90*time.Second {
		t.Fatalf("unexpected ttl %v", cfg.Storage.CacheTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	env["CACHE_TTL"] = "soon"
	if err := applyEnv(&cfg, lookup); err == nil {
		t.Fatalf("expected invalid CACHE_TTL error")
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = DriverTables
	cfg.Storage.Key = ""
	cfg.Notify.Channel = "toasts"

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"connection_string", "storage.key", "notify.channel"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}

	cfg = Default()
	cfg.Storage.Driver = "postgres"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "postgres") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestJWKSSettings(t *testing.T) {
	env := map[string]string{
		"JWKS_URL":      "https://wizard.eu.auth0.com/.well-known/jwks.json",
		"AUTH_AUDIENCE": "todo-list-hp",
		"AUTH_ISSUER":   "https://wizard.eu.auth0.com/",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := Default()
	if err := applyEnv(&cfg, lookup); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Server.JWKSURL != env["JWKS_URL"] || cfg.Server.Audience != "todo-list-hp" || cfg.Server.Issuer != env["AUTH_ISSUER"] {
		t.Fatalf("jwks settings not applied: %#v", cfg.Server)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	cfg.Server.AuthSecret = "mischief-managed"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "jwks_url") {
		t.Fatalf("expected conflicting auth error, got %v", err)
	}
}
