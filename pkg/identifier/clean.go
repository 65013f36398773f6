package identifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// clean.go implements the filename cleaning pipeline (§4.D steps 1-6),
// adapted from the teacher's pkg/strm/strm.go sanitizeFilename prefix/
// separator handling and pkg/sync/file_types.go's video-extension set
// (narrowed here to the 9 extensions §4.D names explicitly).

// VideoExtensions is the exact set §4.D step 3 names.
var VideoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".ts":   true,
	".m2ts": true,
}

var (
	leadingTagPattern = regexp.MustCompile(`^(\[[^\[\]]*\]|\([^()]*\))[\s._-]*`)
	sitePrefixPattern = regexp.MustCompile(`(?i)^(www\.[\w-]+\.(com|net|org)@|[\w-]+\.(com|net|org)@)`)
	camelBoundary     = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonAlnumRun       = regexp.MustCompile(`[._\-\[\]()]+`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
	yearPattern       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	stopwordPattern   = regexp.MustCompile(`(?i)\b(1080p|720p|2160p|480p|4k|uhd|hdr|x264|x265|h264|h265|hevc|bluray|blu-ray|webrip|web-dl|webdl|hdtv|dvdrip|brrip|bdrip|remux|proper|repack|extended|unrated|directors?\.?cut|multi|dual|complete|season|s\d{1,2}\s*e\d{1,3}|\d{1,2}\s*x\s*\d{1,3})\b`)
)

// Clean runs the cleaning pipeline on one filename and returns the
// candidate title and, if found, a validated year.
func Clean(filename string) (title string, year string) {
	s := stripLeadingTags(filename)
	s = sitePrefixPattern.ReplaceAllString(s, "")
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	s = stripVideoExtension(s)
	s = nonAlnumRun.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	candidateTitle := s
	if loc := yearPattern.FindStringIndex(s); loc != nil {
		y := s[loc[0]:loc[1]]
		if validatedYear(y) {
			year = y
			candidateTitle = s[:loc[0]]
		}
	}

	candidateTitle = stopwordPattern.ReplaceAllString(candidateTitle, " ")
	candidateTitle = whitespaceRun.ReplaceAllString(candidateTitle, " ")
	candidateTitle = strings.TrimSpace(candidateTitle)

	return candidateTitle, year
}

// stripLeadingTags strips every leading bracket- or paren-delimited tag
// (tracker names, scene bots) one at a time, so "[RARBG][1080p].Name.mkv"
// loses both tags before camel splitting ever sees the rest of the name.
func stripLeadingTags(s string) string {
	for {
		loc := leadingTagPattern.FindStringIndex(s)
		if loc == nil || loc[0] != 0 || loc[1] == 0 {
			return s
		}
		s = s[loc[1]:]
	}
}

func stripVideoExtension(name string) string {
	for ext := range VideoExtensions {
		if len(name) > len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// validatedYear accepts years in [1900, currentYear+1], per §4.D step 5.
func validatedYear(y string) bool {
	n, err := strconv.Atoi(y)
	if err != nil {
		return false
	}
	now := time.Now().Year()
	return n >= 1900 && n <= now+1
}
