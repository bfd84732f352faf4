package tokenstore

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token.db")

	store, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	// Empty store loads "".
	token, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if token != "" {
		t.Errorf("expected empty token, got %q", token)
	}

	if err := store.Save(ctx, "tok-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	token, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if token != "tok-1" {
		t.Errorf("expected tok-1, got %q", token)
	}

	// Save overwrites, there is only ever one row.
	if err := store.Save(ctx, "tok-2"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	token, _ = store.Load(ctx)
	if token != "tok-2" {
		t.Errorf("expected tok-2, got %q", token)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	token, _ = store.Load(ctx)
	if token != "" {
		t.Errorf("expected empty token after clear, got %q", token)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token.db")

	store, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := store.Save(ctx, "persisted"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Close()

	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	token, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if token != "persisted" {
		t.Errorf("expected persisted token, got %q", token)
	}
}

func TestSQLiteCreatesParentDir(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "token.db")

	store, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	if err := store.Save(ctx, "x"); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	token, _ := store.Load(ctx)
	if token != "" {
		t.Errorf("expected empty token, got %q", token)
	}

	store.Save(ctx, "mem-tok")
	token, _ = store.Load(ctx)
	if token != "mem-tok" {
		t.Errorf("expected mem-tok, got %q", token)
	}

	store.Clear(ctx)
	token, _ = store.Load(ctx)
	if token != "" {
		t.Errorf("expected empty token after clear, got %q", token)
	}
}
