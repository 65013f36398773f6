package identifier

import (
	"context"
	"strconv"
	"strings"

	"github.com/debridav/debridav/pkg/metadata"
)

// identifier.go orchestrates the cleaning pipeline, type heuristic, query
// strategy, and candidate selection into one Identify call (§4.D).

type ExternalID struct {
	Source string
	ID     string
}

type Identification struct {
	Title      string
	Year       string
	MediaType  MediaType
	ExternalID *ExternalID
}

// MetadataSearcher is the subset of pkg/metadata.Client that Identify
// needs, declared locally so tests can supply a fake.
type MetadataSearcher interface {
	SearchMovie(ctx context.Context, title, year string) ([]metadata.Candidate, error)
	SearchShow(ctx context.Context, title, year string) ([]metadata.Candidate, error)
}

// Identify runs the full pipeline for one filename. A nil result with a
// nil error means no candidate survived selection; callers must retry on
// a later scan rather than treat it as a permanent miss (§4.D failure
// behavior).
func Identify(ctx context.Context, client MetadataSearcher, filename string, siblingPaths []string) (*Identification, error) {
	title, year := Clean(filename)
	if title == "" {
		return nil, nil
	}

	mediaType := DetectType(filename, siblingPaths)

	var tv, movies []metadata.Candidate
	var err error

	if mediaType == Show {
		tv, err = client.SearchShow(ctx, title, year)
		if err != nil {
			return nil, err
		}
		if len(tv) == 0 {
			movies, err = client.SearchMovie(ctx, title, year)
			if err != nil {
				return nil, err
			}
		}
	} else {
		movies, err = client.SearchMovie(ctx, title, year)
		if err != nil {
			return nil, err
		}
		if len(movies) == 0 {
			tv, err = client.SearchShow(ctx, title, year)
			if err != nil {
				return nil, err
			}
		}
	}

	return selectBestMatch(tv, movies, title, year), nil
}

type scored struct {
	candidate metadata.Candidate
	score     float64
	exact     bool
	yearHit   bool
}

func bestOf(candidates []metadata.Candidate, title, year string) (*scored, bool) {
	var best *scored
	for _, c := range candidates {
		score, ok := ScoreResult(candidateInput{title: c.Title, year: c.Year, popularity: c.Popularity}, title, year)
		if !ok {
			continue
		}
		s := scored{
			candidate: c,
			score:     score,
			exact:     strings.EqualFold(strings.TrimSpace(c.Title), strings.TrimSpace(title)),
			yearHit:   year != "" && c.Year == year,
		}
		if best == nil || s.score > best.score {
			copied := s
			best = &copied
		}
	}
	return best, best != nil
}

// selectBestMatch implements §4.D's selection priority: an exact-title,
// year-matched candidate unique to one media type wins outright; failing
// that, the higher composite score wins, which already weighs exact-title
// and year-match bonuses alongside popularity. Titles under 4 characters
// with no recovered year are rejected outright as too ambiguous.
func selectBestMatch(tv, movies []metadata.Candidate, title, year string) *Identification {
	if len(strings.TrimSpace(title)) < 4 && year == "" {
		return nil
	}

	bestTV, hasTV := bestOf(tv, title, year)
	bestMovie, hasMovie := bestOf(movies, title, year)

	if !hasTV && !hasMovie {
		return nil
	}

	var winner *scored
	var winnerType MediaType

	switch {
	case hasTV && hasMovie:
		tvExactYear := bestTV.exact && bestTV.yearHit
		movieExactYear := bestMovie.exact && bestMovie.yearHit
		switch {
		case tvExactYear && !movieExactYear:
			winner, winnerType = bestTV, Show
		case movieExactYear && !tvExactYear:
			winner, winnerType = bestMovie, Movie
		case bestTV.score >= bestMovie.score:
			winner, winnerType = bestTV, Show
		default:
			winner, winnerType = bestMovie, Movie
		}
	case hasTV:
		winner, winnerType = bestTV, Show
	default:
		winner, winnerType = bestMovie, Movie
	}

	ident := &Identification{
		Title:     winner.candidate.Title,
		Year:      winner.candidate.Year,
		MediaType: winnerType,
	}
	if winner.candidate.ID != 0 {
		ident.ExternalID = &ExternalID{Source: "tmdb", ID: strconv.Itoa(winner.candidate.ID)}
	}
	return ident
}
