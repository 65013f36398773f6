package reconciler

import (
	"context"
	"testing"

	"github.com/debridav/debridav/internal/config"
	"github.com/debridav/debridav/pkg/debrid"
	"github.com/debridav/debridav/pkg/identifier"
	"github.com/debridav/debridav/pkg/metadata"
	"github.com/debridav/debridav/pkg/notifier"
	"github.com/debridav/debridav/pkg/persistence"
	"github.com/debridav/debridav/pkg/repair"
)

type fakeSearcher struct {
	movies []metadata.Candidate
}

func (f *fakeSearcher) SearchMovie(ctx context.Context, title, year string) ([]metadata.Candidate, error) {
	return f.movies, nil
}

func (f *fakeSearcher) SearchShow(ctx context.Context, title, year string) ([]metadata.Candidate, error) {
	return nil, nil
}

func newTestReconciler(t *testing.T, searcher identifier.MetadataSearcher) (*Reconciler, *persistence.Store) {
	t.Helper()
	store, err := persistence.Open(t.TempDir() + "/metadata.db")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{ScanIntervalSecs: 60}
	r := New(cfg, nil, searcher, store, repair.New(nil), notifier.New(cfg))
	return r, store
}

func TestForgetVanished_DeletesMissingIDs(t *testing.T) {
	r, store := newTestReconciler(t, &fakeSearcher{})

	entry := persistence.Entry{Item: debrid.TorrentInventoryItem{ID: "gone"}}
	if err := store.Insert("gone", entry); err != nil {
		t.Fatalf("insert: %v", err)
	}

	persisted := map[string]persistence.Entry{"gone": entry}
	r.forgetVanished(nil, persisted)

	if _, exists := persisted["gone"]; exists {
		t.Fatalf("expected vanished id removed from in-memory map")
	}
	all, err := store.ReadAll()
	if err != nil {
		t.Fatalf("readall: %v", err)
	}
	if _, exists := all["gone"]; exists {
		t.Fatalf("expected vanished id removed from store")
	}
}

func TestForgetVanished_KeepsPresentIDs(t *testing.T) {
	r, store := newTestReconciler(t, &fakeSearcher{})

	entry := persistence.Entry{Item: debrid.TorrentInventoryItem{ID: "here"}}
	if err := store.Insert("here", entry); err != nil {
		t.Fatalf("insert: %v", err)
	}

	persisted := map[string]persistence.Entry{"here": entry}
	inventory := []debrid.TorrentInventoryItem{{ID: "here"}}
	r.forgetVanished(inventory, persisted)

	if _, exists := persisted["here"]; !exists {
		t.Fatalf("expected present id to survive")
	}
}

func TestIdentifyUnseen_ReusesPersistedEntry(t *testing.T) {
	r, _ := newTestReconciler(t, &fakeSearcher{})

	item := debrid.TorrentInventoryItem{ID: "t1", Filename: "Movie.2020.mkv"}
	persisted := map[string]persistence.Entry{
		"t1": {Item: item, Identification: identifier.Identification{Title: "Movie", Year: "2020"}},
	}

	results := r.identifyUnseen(context.Background(), []debrid.TorrentInventoryItem{item}, persisted)
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].Identification.Title != "Movie" {
		t.Fatalf("expected reused identification, got %+v", results[0].Identification)
	}
}

func TestIdentifyUnseen_IdentifiesAndPersistsNewItem(t *testing.T) {
	searcher := &fakeSearcher{movies: []metadata.Candidate{{ID: 27205, Title: "Inception", Year: "2010", Popularity: 90}}}
	r, store := newTestReconciler(t, searcher)

	item := debrid.TorrentInventoryItem{
		ID:       "t1",
		Filename: "Inception.mkv",
		Files:    []debrid.InventoryFile{{ID: 1, Path: "Inception.2010.mkv", Selected: true}},
	}

	results := r.identifyUnseen(context.Background(), []debrid.TorrentInventoryItem{item}, map[string]persistence.Entry{})
	if len(results) != 1 {
		t.Fatalf("expected one identified result, got %d", len(results))
	}
	if results[0].Identification.Title != "Inception" {
		t.Fatalf("unexpected identification: %+v", results[0].Identification)
	}

	all, err := store.ReadAll()
	if err != nil {
		t.Fatalf("readall: %v", err)
	}
	if _, ok := all["t1"]; !ok {
		t.Fatalf("expected new identification to be persisted")
	}
}
