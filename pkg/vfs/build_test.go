package vfs

import (
	"context"
	"testing"

	"github.com/debridav/debridav/pkg/debrid"
	"github.com/debridav/debridav/pkg/identifier"
)

func fakeUnrestrict(ctx context.Context, link string) (debrid.UnrestrictResponse, error) {
	return debrid.UnrestrictResponse{Download: "https://example.com/resolved/" + link}, nil
}

func neverHide(id string) bool { return false }

func TestBuild_MovieGetsCanonicalFolderAndNFO(t *testing.T) {
	items := []Item{
		{
			Torrent: debrid.TorrentInventoryItem{
				ID:    "t1",
				Files: []debrid.InventoryFile{{ID: 1, Path: "Inception.2010.mkv", Bytes: 1000, Selected: true}},
				Links: []string{"link1"},
			},
			Identification: identifier.Identification{
				Title:      "Inception",
				Year:       "2010",
				MediaType:  identifier.Movie,
				ExternalID: &identifier.ExternalID{Source: "tmdb", ID: "27205"},
			},
		},
	}

	tree := Build(context.Background(), items, fakeUnrestrict, neverHide)

	movies, _ := tree.Root.Get("Movies")
	moviesDir := movies.(*Directory)

	folder, ok := moviesDir.Get("Inception (2010) [tmdbid-27205]")
	if !ok {
		t.Fatalf("expected canonical folder name, got keys %v", moviesDir.Keys())
	}
	dir := folder.(*Directory)

	if _, ok := dir.Get("movie.nfo"); !ok {
		t.Fatalf("expected movie.nfo to be present")
	}
	leaf, ok := dir.Get("Inception.2010.strm")
	if !ok {
		t.Fatalf("expected an strm leaf, got keys %v", dir.Keys())
	}
	if leaf.(*StrmLeaf).DebridLink != "link1" {
		t.Fatalf("unexpected leaf link: %+v", leaf)
	}
}

func TestBuild_ShowGroupsBySeasonFolder(t *testing.T) {
	items := []Item{
		{
			Torrent: debrid.TorrentInventoryItem{
				ID: "t2",
				Files: []debrid.InventoryFile{
					{ID: 1, Path: "Show.S02E01.mkv", Bytes: 1000, Selected: true},
					{ID: 2, Path: "Show.S02E02.mkv", Bytes: 1000, Selected: true},
				},
				Links: []string{"link1", "link2"},
			},
			Identification: identifier.Identification{
				Title:     "Show",
				Year:      "2019",
				MediaType: identifier.Show,
			},
		},
	}

	tree := Build(context.Background(), items, fakeUnrestrict, neverHide)

	shows, _ := tree.Root.Get("Shows")
	showDir := shows.(*Directory).Keys()
	if len(showDir) != 1 {
		t.Fatalf("expected a single show folder, got %v", showDir)
	}

	folder, _ := shows.(*Directory).Get(showDir[0])
	season, ok := folder.(*Directory).Get("Season 02")
	if !ok {
		t.Fatalf("expected Season 02 folder, got keys %v", folder.(*Directory).Keys())
	}
	if len(season.(*Directory).Keys()) != 2 {
		t.Fatalf("expected 2 episode leaves, got %v", season.(*Directory).Keys())
	}
}

func TestBuild_DuplicateKeepsLargerFile(t *testing.T) {
	items := []Item{
		{
			Torrent: debrid.TorrentInventoryItem{
				ID:    "t1",
				Files: []debrid.InventoryFile{{ID: 1, Path: "Movie.2020.mkv", Bytes: 500, Selected: true}},
				Links: []string{"small"},
			},
			Identification: identifier.Identification{Title: "Movie", Year: "2020", MediaType: identifier.Movie},
		},
		{
			Torrent: debrid.TorrentInventoryItem{
				ID:    "t2",
				Files: []debrid.InventoryFile{{ID: 1, Path: "Movie.2020.mkv", Bytes: 5000, Selected: true}},
				Links: []string{"large"},
			},
			Identification: identifier.Identification{Title: "Movie", Year: "2020", MediaType: identifier.Movie},
		},
	}

	tree := Build(context.Background(), items, fakeUnrestrict, neverHide)

	movies, _ := tree.Root.Get("Movies")
	folder, _ := movies.(*Directory).Get("Movie (2020)")
	leaf, ok := folder.(*Directory).Get("Movie.2020.strm")
	if !ok {
		t.Fatalf("expected a leaf to win the duplicate")
	}
	if leaf.(*StrmLeaf).DebridLink != "large" {
		t.Fatalf("expected the larger file to win, got link %q", leaf.(*StrmLeaf).DebridLink)
	}
}

func TestBuild_LinkSelectionMismatchOmitsItem(t *testing.T) {
	items := []Item{
		{
			Torrent: debrid.TorrentInventoryItem{
				ID:    "t1",
				Files: []debrid.InventoryFile{{ID: 1, Path: "Movie.2020.mkv", Bytes: 500, Selected: true}},
				Links: []string{},
			},
			Identification: identifier.Identification{Title: "Movie", Year: "2020", MediaType: identifier.Movie},
		},
	}

	tree := Build(context.Background(), items, fakeUnrestrict, neverHide)

	movies, _ := tree.Root.Get("Movies")
	if len(movies.(*Directory).Keys()) != 0 {
		t.Fatalf("expected mismatched item to be omitted, got %v", movies.(*Directory).Keys())
	}
}

func TestBuild_HiddenTorrentIsOmitted(t *testing.T) {
	items := []Item{
		{
			Torrent: debrid.TorrentInventoryItem{
				ID:    "broken",
				Files: []debrid.InventoryFile{{ID: 1, Path: "Movie.2020.mkv", Bytes: 500, Selected: true}},
				Links: []string{"link1"},
			},
			Identification: identifier.Identification{Title: "Movie", Year: "2020", MediaType: identifier.Movie},
		},
	}

	tree := Build(context.Background(), items, fakeUnrestrict, func(id string) bool { return id == "broken" })

	movies, _ := tree.Root.Get("Movies")
	if len(movies.(*Directory).Keys()) != 0 {
		t.Fatalf("expected hidden torrent's item to be omitted, got %v", movies.(*Directory).Keys())
	}
}
