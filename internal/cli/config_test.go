package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "perceval.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
api_url = "http://localhost:9000/api/v1/"
sleep_time = "45s"
tag = "nightly"

[storage]
sqlite = "/var/lib/perceval/items.db"
mongo_uri = "mongodb://localhost:27017"
mongo_database = "registry"

[state]
redis_addr = "localhost:6379"
redis_db = 3
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.APIURL != "http://localhost:9000/api/v1/" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.SleepTime.Duration != 45*time.Second {
		t.Errorf("SleepTime = %v, want 45s", cfg.SleepTime.Duration)
	}
	if cfg.Tag != "nightly" {
		t.Errorf("Tag = %q", cfg.Tag)
	}
	if cfg.Storage.SQLite != "/var/lib/perceval/items.db" {
		t.Errorf("Storage.SQLite = %q", cfg.Storage.SQLite)
	}
	if cfg.Storage.MongoDatabase != "registry" {
		t.Errorf("Storage.MongoDatabase = %q", cfg.Storage.MongoDatabase)
	}
	if cfg.State.RedisAddr != "localhost:6379" {
		t.Errorf("State.RedisAddr = %q", cfg.State.RedisAddr)
	}
	if cfg.State.RedisDB != 3 {
		t.Errorf("State.RedisDB = %d", cfg.State.RedisDB)
	}
}

func TestLoadConfig_BadDuration(t *testing.T) {
	path := writeConfig(t, `sleep_time = "five minutes"`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
