package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultServer = "http://localhost:8484"

// Config is the client configuration.
//
// Precedence when resolving a value: command-line flag > environment
// variable > config file > built-in default. Flags are applied by the
// caller after Load.
type Config struct {
	// Server is the base URL of the RalphX backend.
	Server string `json:"server"`
	// Token is an optional bearer token sent on every request.
	Token string `json:"token,omitempty"`
	// RequestTimeout bounds non-streaming HTTP calls. Streaming connections
	// are not subject to it.
	RequestTimeout time.Duration `json:"-"`

	// Dir is the per-user data directory (snapshot cache, tui state, debug log).
	Dir string `json:"-"`
}

func configDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("RALPHX_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ralphx"), nil
}

func configPath(dir string) string { return filepath.Join(dir, "config.json") }

// Load reads the config file (if any) and applies environment overrides.
// A missing config file is not an error; a corrupt one is.
func Load() (*Config, error) {
	// Opt-in .env support for development setups.
	_ = godotenv.Load()

	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:         defaultServer,
		RequestTimeout: 15 * time.Second,
		Dir:            dir,
	}

	b, err := os.ReadFile(configPath(dir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath(dir), err)
		}
		cfg.Dir = dir
	}

	if v := strings.TrimSpace(os.Getenv("RALPHX_SERVER")); v != "" {
		cfg.Server = v
	}
	if v := strings.TrimSpace(os.Getenv("RALPHX_TOKEN")); v != "" {
		cfg.Token = v
	}

	cfg.Server = strings.TrimRight(cfg.Server, "/")
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func (c *Config) Save() error {
	if c == nil {
		return nil
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	path := configPath(c.Dir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
