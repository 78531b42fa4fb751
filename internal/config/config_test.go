package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RALPHX_DIR", dir)
	t.Setenv("RALPHX_SERVER", "")
	t.Setenv("RALPHX_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server != "http://localhost:8484" {
		t.Errorf("Server = %q", cfg.Server)
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RALPHX_DIR", dir)
	t.Setenv("RALPHX_SERVER", "")
	t.Setenv("RALPHX_TOKEN", "")

	body := `{"server":"https://ralphx.example/","token":"file-token"}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server != "https://ralphx.example" {
		t.Errorf("Server = %q, want trailing slash trimmed", cfg.Server)
	}
	if cfg.Token != "file-token" {
		t.Errorf("Token = %q", cfg.Token)
	}

	t.Setenv("RALPHX_SERVER", "https://override.example")
	t.Setenv("RALPHX_TOKEN", "env-token")
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server != "https://override.example" {
		t.Errorf("Server = %q, want env override", cfg.Server)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, want env override", cfg.Token)
	}
}

func TestLoadCorruptFileFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RALPHX_DIR", dir)

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a corrupt config file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RALPHX_DIR", dir)
	t.Setenv("RALPHX_SERVER", "")
	t.Setenv("RALPHX_TOKEN", "")

	cfg := &Config{Server: "https://saved.example", Token: "tok", Dir: dir}
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server != "https://saved.example" || loaded.Token != "tok" {
		t.Errorf("loaded = %+v", loaded)
	}
}
