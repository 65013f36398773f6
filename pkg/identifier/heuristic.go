package identifier

import (
	"regexp"
	"strings"

	ptt "github.com/itsrenoria/ptt-go"
)

// heuristic.go implements the movie-vs-show type heuristic (§4.D), built
// on the teacher's pkg/organizer.go ptt-go usage: a single shared
// *ptt.Parser built once via ptt.NewParser()+ptt.AddDefaults, whose
// TorrentInfo.Seasons/Episodes/Anime fields are the primary signal, with a
// regex fallback over sibling filenames for torrents ptt-go can't parse.
type MediaType int

const (
	Movie MediaType = iota
	Show
)

var sharedParser = newSharedParser()

func newSharedParser() *ptt.Parser {
	p := ptt.NewParser()
	ptt.AddDefaults(p)
	return p
}

var (
	seasonEpisodePattern = regexp.MustCompile(`(?i)S\d{1,2}E\d{1,3}`)
	xFormPattern         = regexp.MustCompile(`\d{1,2}x\d{1,3}`)
)

// DetectType implements §4.D's type heuristic: a multi-file torrent with
// at least two selected paths carrying season/episode markers, or a
// filename whose last path segment carries one, is a Show; otherwise Movie.
func DetectType(filename string, siblingPaths []string) MediaType {
	matching := 0
	for _, p := range siblingPaths {
		if hasEpisodeMarker(p) {
			matching++
		}
	}
	if matching >= 2 {
		return Show
	}

	if hasEpisodeMarker(filename) {
		return Show
	}
	return Movie
}

func hasEpisodeMarker(path string) bool {
	base := stripVideoExtension(lastSegment(path))

	info := sharedParser.Parse(base)
	if info != nil && (len(info.Seasons) > 0 || len(info.Episodes) > 0 || info.Anime) {
		return true
	}

	return seasonEpisodePattern.MatchString(base) || xFormPattern.MatchString(base)
}

func lastSegment(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
