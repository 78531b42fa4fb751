package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"ralphx-cli/internal/model"
)

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, _, err := c.Projects(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}

	ps := []model.Project{
		{ID: "proj-1", Name: "alpha", Path: "/src/alpha"},
		{ID: "proj-2", Name: "beta", Path: "/src/beta", Archived: true},
	}
	if err := c.PutProjects(ctx, ps); err != nil {
		t.Fatal(err)
	}

	got, at, err := c.Projects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "proj-1" || !got[1].Archived {
		t.Fatalf("got %+v", got)
	}
	if time.Since(at) > time.Minute {
		t.Fatalf("fetched-at %v not recent", at)
	}
}

func TestCacheReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.PutLoops(ctx, []model.Loop{{ID: "loop-1"}, {ID: "loop-2"}}); err != nil {
		t.Fatal(err)
	}
	if err := c.PutLoops(ctx, []model.Loop{{ID: "loop-3"}}); err != nil {
		t.Fatal(err)
	}

	got, _, err := c.Loops(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "loop-3" {
		t.Fatalf("cache reflects stale fetch: %+v", got)
	}
}

func TestCacheKindsAreIndependent(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.PutItems(ctx, []model.WorkItem{{ID: "item-1", Status: model.ItemPending}}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Workflows(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("workflows should be empty, got %v", err)
	}
	items, _, err := c.Items(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Status != model.ItemPending {
		t.Fatalf("got %+v", items)
	}
}

func TestTUIStateRoundTrip(t *testing.T) {
	dir := t.TempDir()

	st, err := LoadTUIState(dir)
	if err != nil {
		t.Fatal(err)
	}
	if st.Version != 1 || st.View != "" {
		t.Fatalf("fresh state = %+v", st)
	}

	st.View = "loop"
	st.SelectedProjectID = "proj-1"
	st.SelectedLoopID = "loop-9"
	if err := SaveTUIState(dir, st); err != nil {
		t.Fatal(err)
	}

	got, err := LoadTUIState(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.View != "loop" || got.SelectedLoopID != "loop-9" {
		t.Fatalf("got %+v", got)
	}
}
