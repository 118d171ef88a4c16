package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load("non-existent-config.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	assertDefaultConfig(t, cfg)
}

func TestLoadWithPartialConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  address: ":9090"
database:
  driver: ""
  sqlite: {}
upload:
  image_max_size: 1024
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Fatalf("expected server address :9090, got %s", cfg.Server.Address)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected database driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Upload.ImageMaxSize != 1024 {
		t.Fatalf("expected image max size 1024, got %d", cfg.Upload.ImageMaxSize)
	}
	if cfg.Upload.ModelMaxSize != defaultModelMaxSize {
		t.Fatalf("expected default model max size, got %d", cfg.Upload.ModelMaxSize)
	}
	if cfg.Server.MaxRequestBodySize < cfg.Upload.ModelMaxSize {
		t.Fatalf("request body limit %d below model ceiling", cfg.Server.MaxRequestBodySize)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("unknown: true\n"), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BLENDER_BOARD_SERVER_ADDRESS", ":7070")
	t.Setenv("BLENDER_BOARD_STORAGE_LOCAL_BASE_PATH", "/tmp/media")
	t.Setenv("BLENDER_BOARD_REDIS_ENABLED", "true")
	t.Setenv("BLENDER_BOARD_REDIS_LOCK_TTL", "45s")

	cfg, err := Load("non-existent-config.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Address != ":7070" {
		t.Fatalf("expected env address :7070, got %s", cfg.Server.Address)
	}
	if cfg.Storage.Local.BasePath != "/tmp/media" {
		t.Fatalf("expected env base path, got %s", cfg.Storage.Local.BasePath)
	}
	if !cfg.Redis.Enabled {
		t.Fatal("expected redis enabled from env")
	}
	if cfg.Redis.LockTTL != 45*time.Second {
		t.Fatalf("expected lock ttl 45s, got %s", cfg.Redis.LockTTL)
	}
}

func assertDefaultConfig(t *testing.T, cfg *Config) {
	t.Helper()
	if cfg == nil {
		t.Fatalf("config is nil")
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected default address :8080, got %s", cfg.Server.Address)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected default driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Database.SQLite.Path != "data/blender-board.sqlite" {
		t.Fatalf("expected default sqlite path, got %s", cfg.Database.SQLite.Path)
	}
	if cfg.Storage.Local.BasePath != "uploads" {
		t.Fatalf("expected default upload root uploads, got %s", cfg.Storage.Local.BasePath)
	}
	if cfg.Upload.ImageMaxSize != defaultImageMaxSize || cfg.Upload.ModelMaxSize != defaultModelMaxSize {
		t.Fatalf("unexpected upload ceilings: %+v", cfg.Upload)
	}
	if cfg.Redis.Enabled || cfg.Redis.LockKey != "blender_board:write_lock" {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
}
