package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestFile(t *testing.T) *File {
	t.Helper()
	f, err := NewFile(filepath.Join(t.TempDir(), "mall.json"), "mall:")
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	return f
}

func TestFileRoundTrip(t *testing.T) {
	f := newTestFile(t)
	ctx := context.Background()

	if _, ok, _ := f.Get(ctx, "token"); ok {
		t.Fatal("missing file should read as empty")
	}
	if err := f.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := f.Get(ctx, "token")
	if err != nil || !ok || v != "abc" {
		t.Fatalf("Get = (%q, %v, %v), want abc", v, ok, err)
	}
	if err := f.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := f.Get(ctx, "token"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mall.json")
	ctx := context.Background()

	first, err := NewFile(path, "mall:")
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if err := first.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	second, err := NewFile(path, "mall:")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	v, ok, err := second.Get(ctx, "token")
	if err != nil || !ok || v != "abc" {
		t.Fatalf("reopened Get = (%q, %v, %v), want abc", v, ok, err)
	}
}

func TestFileRejectsEmptyPath(t *testing.T) {
	if _, err := NewFile("", ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFileWatchSeesExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mall.json")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watching, err := NewFile(path, "mall:")
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	events, err := watching.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	// A second adapter plays the other process.
	writer, err := NewFile(path, "mall:")
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if err := writer.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Key != "token" || ev.Op != OpSet {
			t.Fatalf("event = %+v, want token set", ev)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event after external write")
	}
}

func TestFileTornDocumentFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mall.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	f, err := NewFile(path, "mall:")
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if _, _, err := f.Get(context.Background(), "token"); err == nil {
		t.Fatal("expected decode error for corrupt document")
	}
}
