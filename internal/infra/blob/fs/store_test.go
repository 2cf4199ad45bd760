package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"dicomstatic/internal/blob/core"
)

func TestWriteReadRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	key := "studies/1.2.3/series/4.5/instances/6.7/metadata.json.gz"
	if err := store.Write(ctx, key, []byte("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || !bytes.Equal(got, []byte("first")) {
		t.Fatalf("read back %q err=%v", got, err)
	}

	// Overwrite must replace in place.
	if err := store.Write(ctx, key, []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	rc, err = store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open after overwrite: %v", err)
	}
	got, _ = io.ReadAll(rc)
	rc.Close()
	if string(got) != "second" {
		t.Fatalf("overwrite not visible, got %q", got)
	}
}

func TestOpenMissingIsNotExist(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, err = store.Open(context.Background(), "studies/none/index.json.gz")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("want fs.ErrNotExist, got %v", err)
	}
	ok, err := store.Exists(context.Background(), "studies/none/index.json.gz")
	if err != nil || ok {
		t.Fatalf("exists = %v err=%v", ok, err)
	}
}

func TestInvalidKeysRejected(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "/abs", "../escape", "a/../../b"} {
		if err := store.Write(ctx, key, []byte("x")); !errors.Is(err, core.ErrInvalidKey) {
			t.Fatalf("Write(%q) = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestListChildren(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	seed := []string{
		"studies/index.json.gz",
		"studies/2.0/index.json.gz",
		"studies/1.9/index.json.gz",
		"studies/1.10/index.json.gz",
	}
	for _, k := range seed {
		if err := store.Write(ctx, k, []byte("x")); err != nil {
			t.Fatalf("write %s: %v", k, err)
		}
	}
	entries, err := store.List(ctx, "studies")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{"1.10", "1.9", "2.0", "index.json.gz"}
	if len(names) != len(want) {
		t.Fatalf("entries = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("entries = %v, want %v", names, want)
		}
	}
	if entries[3].Dir {
		t.Fatal("index.json.gz should not be a directory")
	}
	if !entries[0].Dir {
		t.Fatal("study entries should be directories")
	}

	missing, err := store.List(ctx, "studies/absent/series")
	if err != nil || len(missing) != 0 {
		t.Fatalf("missing dir should list empty, got %v err=%v", missing, err)
	}
}

func TestKeysRecursiveSorted(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	seed := []string{
		"notifications/1_2_3.json",
		"studies/1/index.json.gz",
		"studies/1/series/2/metadata.json.gz",
	}
	for _, k := range seed {
		if err := store.Write(ctx, k, []byte("x")); err != nil {
			t.Fatalf("write %s: %v", k, err)
		}
	}
	keys, err := store.Keys(ctx, "")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 3 || keys[0] != "notifications/1_2_3.json" || keys[2] != "studies/1/series/2/metadata.json.gz" {
		t.Fatalf("keys = %v", keys)
	}
	scoped, err := store.Keys(ctx, "studies/")
	if err != nil || len(scoped) != 2 {
		t.Fatalf("scoped keys = %v err=%v", scoped, err)
	}
}

func TestNoTempFilesVisible(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	if err := store.Write(ctx, "studies/1/a.bin", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	// A stale staging file from an interrupted write must stay invisible.
	stale := filepath.Join(dir, "studies", "1", tempPrefix+"stale")
	if err := os.WriteFile(stale, []byte("partial"), 0o644); err != nil {
		t.Fatalf("plant stale temp: %v", err)
	}
	entries, err := store.List(ctx, "studies/1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "a.bin" {
		t.Fatalf("temp file leaked into listing: %v", entries)
	}
	keys, err := store.Keys(ctx, "")
	if err != nil || len(keys) != 1 {
		t.Fatalf("temp file leaked into keys: %v err=%v", keys, err)
	}
}
