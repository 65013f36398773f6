package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/debridav/debridav/pkg/debrid"
	"github.com/debridav/debridav/pkg/identifier"
)

func TestOpen_CreatesSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	defer store.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected store file to exist: %v", err)
	}
	if info.IsDir() {
		t.Fatalf("expected a single file, got a directory")
	}
}

func TestInsertThenReadAll(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "metadata.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	entry := Entry{
		Item: debrid.TorrentInventoryItem{ID: "abc123", Filename: "Movie.2020.mkv"},
		Identification: identifier.Identification{
			Title: "Movie",
			Year:  "2020",
		},
	}

	if err := store.Insert("abc123", entry); err != nil {
		t.Fatalf("unexpected error inserting: %v", err)
	}

	all, err := store.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error reading all: %v", err)
	}

	got, ok := all["abc123"]
	if !ok {
		t.Fatalf("expected entry abc123 to be present")
	}
	if got.Identification.Title != "Movie" {
		t.Fatalf("expected round-tripped title Movie, got %q", got.Identification.Title)
	}
}

func TestDelete_RemovesEntry(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "metadata.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	_ = store.Insert("abc123", Entry{Item: debrid.TorrentInventoryItem{ID: "abc123"}})
	if err := store.Delete("abc123"); err != nil {
		t.Fatalf("unexpected error deleting: %v", err)
	}

	all, err := store.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := all["abc123"]; ok {
		t.Fatalf("expected entry to be gone after delete")
	}
}
