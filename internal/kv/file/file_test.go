package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"spesetracker/internal/kv"
)

func TestFileStoreReadWrite(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	const key = "@ExpenseTracker:expenses"
	if _, err := s.Read(ctx, key); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Write(ctx, key, []byte("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Write(ctx, key, []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := s.Read(ctx, key)
	if err != nil || string(got) != "second" {
		t.Fatalf("unexpected read: %q err=%v", got, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the data file, found %d entries", len(entries))
	}
	if entries[0].Name() != "_ExpenseTracker_expenses.json" {
		t.Fatalf("unexpected file name %q", entries[0].Name())
	}
}

func TestFileStoreCancelledContext(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Write(ctx, "k", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSyncDir(t *testing.T) {
	dir := t.TempDir()
	if err := syncDir(dir); err != nil {
		t.Fatalf("sync existing dir: %v", err)
	}
	if err := syncDir(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing dir")
	}
}
