// Package store is the client-side state cache: the last successfully
// fetched copy of backend collections, persisted so lists render instantly
// on launch and remain visible while the backend is unreachable. It holds
// whatever the last fetch returned; there are no invariants beyond that.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"ralphx-cli/internal/model"
)

// Entity kinds the cache tracks.
const (
	KindProjects  = "projects"
	KindLoops     = "loops"
	KindWorkflows = "workflows"
	KindItems     = "items"
)

// ErrNoSnapshot means nothing has ever been cached for that kind.
var ErrNoSnapshot = errors.New("no cached snapshot")

type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot cache under dir.
func Open(ctx context.Context, dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", filepath.Join(dir, "cache.sqlite"))
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	schema := `CREATE TABLE IF NOT EXISTS snapshots (
		kind TEXT PRIMARY KEY,
		fetched_at_unixms INTEGER NOT NULL,
		data_json TEXT NOT NULL
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// put replaces the snapshot for kind with v marshalled as JSON.
func (c *Cache) put(ctx context.Context, kind string, v any, fetchedAt time.Time) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO snapshots(kind, fetched_at_unixms, data_json) VALUES(?, ?, ?)
		 ON CONFLICT(kind) DO UPDATE SET fetched_at_unixms=excluded.fetched_at_unixms, data_json=excluded.data_json`,
		kind, fetchedAt.UnixMilli(), string(b))
	return err
}

func (c *Cache) get(ctx context.Context, kind string, v any) (time.Time, error) {
	var ms int64
	var data string
	err := c.db.QueryRowContext(ctx,
		`SELECT fetched_at_unixms, data_json FROM snapshots WHERE kind = ?`, kind).Scan(&ms, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, err
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		// A corrupt snapshot is treated as missing; the next fetch rewrites it.
		return time.Time{}, ErrNoSnapshot
	}
	return time.UnixMilli(ms), nil
}

func (c *Cache) PutProjects(ctx context.Context, ps []model.Project) error {
	return c.put(ctx, KindProjects, ps, time.Now())
}

func (c *Cache) Projects(ctx context.Context) ([]model.Project, time.Time, error) {
	var out []model.Project
	at, err := c.get(ctx, KindProjects, &out)
	return out, at, err
}

func (c *Cache) PutLoops(ctx context.Context, ls []model.Loop) error {
	return c.put(ctx, KindLoops, ls, time.Now())
}

func (c *Cache) Loops(ctx context.Context) ([]model.Loop, time.Time, error) {
	var out []model.Loop
	at, err := c.get(ctx, KindLoops, &out)
	return out, at, err
}

func (c *Cache) PutWorkflows(ctx context.Context, ws []model.Workflow) error {
	return c.put(ctx, KindWorkflows, ws, time.Now())
}

func (c *Cache) Workflows(ctx context.Context) ([]model.Workflow, time.Time, error) {
	var out []model.Workflow
	at, err := c.get(ctx, KindWorkflows, &out)
	return out, at, err
}

func (c *Cache) PutItems(ctx context.Context, is []model.WorkItem) error {
	return c.put(ctx, KindItems, is, time.Now())
}

func (c *Cache) Items(ctx context.Context) ([]model.WorkItem, time.Time, error) {
	var out []model.WorkItem
	at, err := c.get(ctx, KindItems, &out)
	return out, at, err
}
