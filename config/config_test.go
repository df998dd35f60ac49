package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token.KeyRetention != 24*time.Hour {
		t.Errorf("Expected key retention 24h, got %s", cfg.Token.KeyRetention)
	}
	if cfg.Token.Prefix != "ethicrawler" {
		t.Errorf("Expected token prefix ethicrawler, got %q", cfg.Token.Prefix)
	}
	if cfg.Payment.MinTxHashLength != 10 {
		t.Errorf("Expected min tx hash length 10, got %d", cfg.Payment.MinTxHashLength)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Expected mysql driver, got %q", cfg.Database.Driver)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ethicrawler.yaml")
	body := []byte(`
database:
  driver: postgres
  dsn: "host=db user=pay dbname=pay"
token:
  prefix: crawlpass
  ttl: 2h
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ETHICRAWLER_ADMIN_API_KEY", "secret-admin")
	t.Setenv("ETHICRAWLER_SERVER_PORT", "9000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Expected postgres driver, got %q", cfg.Database.Driver)
	}
	if cfg.Token.Prefix != "crawlpass" {
		t.Errorf("Expected prefix from file, got %q", cfg.Token.Prefix)
	}
	if cfg.Token.TTL != 2*time.Hour {
		t.Errorf("Expected token ttl 2h, got %s", cfg.Token.TTL)
	}
	if cfg.Admin.APIKey != "secret-admin" {
		t.Errorf("Expected admin key from env, got %q", cfg.Admin.APIKey)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("Expected port from env, got %q", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}
