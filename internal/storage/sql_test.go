package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"spesetracker/internal/kv"
)

func TestSQLiteStoreReadWrite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "data", "spese.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer s.Close()

	const key = "@ExpenseTracker:expenses"
	if _, err := s.Read(ctx, key); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Write(ctx, key, []byte(`[]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Write(ctx, key, []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := s.Read(ctx, key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "spese.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	if err := s.Write(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("write: %v", err)
	}
	s.Close()

	// Migrations must be a no-op the second time around.
	s, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen sqlite store: %v", err)
	}
	defer s.Close()

	got, err := s.Read(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("unexpected read after reopen: %q err=%v", got, err)
	}
}
