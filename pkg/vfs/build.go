package vfs

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/debridav/debridav/internal/logger"
	"github.com/debridav/debridav/pkg/debrid"
	"github.com/debridav/debridav/pkg/identifier"
)

// build.go implements the VFS builder (§4.F), adapted from the teacher's
// pkg/organizer.go getContentTypeAndPath: the canonical folder naming and
// season-folder grouping logic, rebuilt to produce an in-memory tree
// instead of copying files to disk.

type UnrestrictFunc func(ctx context.Context, link string) (debrid.UnrestrictResponse, error)
type ShouldHideFunc func(torrentID string) bool

var seasonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)S(\d{1,2})`),
	regexp.MustCompile(`(?i)season\s*(\d{1,2})`),
	regexp.MustCompile(`(\d{1,2})x\d{1,3}`),
}

// Item pairs one inventory torrent with its resolved identification.
type Item struct {
	Torrent        debrid.TorrentInventoryItem
	Identification identifier.Identification
}

type placement struct {
	bytes int64
}

// Build assembles a fresh Tree from already-filtered (Downloaded,
// identified) items. No lock on any previously-live tree is held while
// this runs (§5: rebuilds happen off to the side, then swap in).
func Build(ctx context.Context, items []Item, unrestrict UnrestrictFunc, shouldHide ShouldHideFunc) *Tree {
	log := logger.New("vfs")

	root := NewDirectory()
	movies := root.Ensure("Movies")
	shows := root.Ensure("Shows")

	seen := map[string]placement{}

	for _, it := range items {
		if shouldHide(it.Torrent.ID) {
			continue
		}
		if !it.Torrent.LinksMatchSelection() {
			log.Warn().Str("id", it.Torrent.ID).Msg("selected file count disagrees with link count, omitting item")
			continue
		}

		folderName := canonicalFolderName(it.Identification)

		switch it.Identification.MediaType {
		case identifier.Movie:
			buildMovie(ctx, movies, folderName, it, unrestrict, seen, log)
		default:
			buildShow(ctx, shows, folderName, it, unrestrict, seen, log)
		}
	}

	return &Tree{Root: root, CreatedAt: time.Now().UTC()}
}

func buildMovie(ctx context.Context, moviesDir *Directory, folderName string, it Item, unrestrict UnrestrictFunc, seen map[string]placement, log zerolog.Logger) {
	dir := moviesDir.Ensure(folderName)
	ensureNFO(dir, "movie.nfo", nfoContent(it.Identification, false))

	placeLeaves(ctx, dir, "Movies/"+folderName, it, unrestrict, seen, log)
}

func buildShow(ctx context.Context, showsDir *Directory, folderName string, it Item, unrestrict UnrestrictFunc, seen map[string]placement, log zerolog.Logger) {
	showDir := showsDir.Ensure(folderName)
	ensureNFO(showDir, "tvshow.nfo", nfoContent(it.Identification, true))

	selected := it.Torrent.SelectedFiles()
	links := it.Torrent.Links

	for i, f := range selected {
		if i >= len(links) {
			break
		}
		season := detectSeason(f.Path)
		seasonFolder := fmt.Sprintf("Season %02d", season)
		seasonDir := showDir.Ensure(seasonFolder)

		placeOne(ctx, seasonDir, "Shows/"+folderName+"/"+seasonFolder, f, links[i], it.Torrent.ID, unrestrict, seen, log)
	}
}

func placeLeaves(ctx context.Context, dir *Directory, basePath string, it Item, unrestrict UnrestrictFunc, seen map[string]placement, log zerolog.Logger) {
	selected := it.Torrent.SelectedFiles()
	links := it.Torrent.Links

	for i, f := range selected {
		if i >= len(links) {
			break
		}
		placeOne(ctx, dir, basePath, f, links[i], it.Torrent.ID, unrestrict, seen, log)
	}
}

// placeOne places a single file into dir, honoring the larger-file-wins
// duplicate policy against any prior claim on the same full path (§4.F).
func placeOne(ctx context.Context, dir *Directory, basePath string, f debrid.InventoryFile, link, torrentID string, unrestrict UnrestrictFunc, seen map[string]placement, log zerolog.Logger) {
	strmName := strmFilename(f.Path)
	fullPath := basePath + "/" + strmName

	if prev, exists := seen[fullPath]; exists && prev.bytes >= f.Bytes {
		return
	}

	leaf, err := resolveLeaf(ctx, unrestrict, link, torrentID, log)
	if err != nil {
		return
	}

	dir.Set(strmName, leaf)
	seen[fullPath] = placement{bytes: f.Bytes}
}

func resolveLeaf(ctx context.Context, unrestrict UnrestrictFunc, link, torrentID string, log zerolog.Logger) (*StrmLeaf, error) {
	resp, err := unrestrict(ctx, link)
	if err != nil {
		log.Warn().Str("torrent", torrentID).Err(err).Msg("unrestrict failed while building VFS, dropping leaf")
		return nil, err
	}
	content := []byte(resp.Download + "\n")
	return &StrmLeaf{ContentBytes: content, DebridLink: link, TorrentID: torrentID}, nil
}

func strmFilename(sourcePath string) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".strm"
}

func detectSeason(path string) int {
	for _, p := range seasonPatterns {
		m := p.FindStringSubmatch(path)
		if len(m) > 1 {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 1
}

func canonicalFolderName(id identifier.Identification) string {
	name := id.Title
	if id.Year != "" {
		name = fmt.Sprintf("%s (%s)", name, id.Year)
	}
	if id.ExternalID != nil {
		name = fmt.Sprintf("%s [%sid-%s]", name, id.ExternalID.Source, id.ExternalID.ID)
	}
	return name
}

func ensureNFO(dir *Directory, name string, content []byte) {
	if _, exists := dir.Get(name); exists {
		return
	}
	dir.Set(name, &VirtualBlob{Content: content})
}
