package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/debridav/debridav/internal/config"
	"github.com/debridav/debridav/internal/logger"
	"github.com/debridav/debridav/internal/request"
	"github.com/debridav/debridav/pkg/ratelimit"
)

// client.go implements the metadata client (§4.C), built on the same
// internal/request.Client and unified retry machine as pkg/debrid, with
// its own independent rate limiter since §4.A scopes adaptive limiting to
// the debrid domain specifically.
type Client struct {
	host    string
	apiKey  string
	http    *request.Client
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

const defaultHost = "https://api.themoviedb.org/3"

func New(cfg *config.Config) *Client {
	log := logger.New("metadata")
	return &Client{
		host:    defaultHost,
		apiKey:  cfg.TMDBAPIKey,
		http:    request.New(request.WithTimeout(60*time.Second), request.WithLogger(log)),
		limiter: ratelimit.New(),
		log:     log,
	}
}

// SearchMovie queries the movie search endpoint for title, optionally
// constrained by year.
func (c *Client) SearchMovie(ctx context.Context, title, year string) ([]Candidate, error) {
	results, err := c.search(ctx, "/search/movie", title, year, "year")
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, r.movieCandidate())
	}
	return out, nil
}

// SearchShow queries the tv search endpoint for title, optionally
// constrained by first-air-date year.
func (c *Client) SearchShow(ctx context.Context, title, year string) ([]Candidate, error) {
	results, err := c.search(ctx, "/search/tv", title, year, "first_air_date_year")
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, r.showCandidate())
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, path, title, year, yearParam string) ([]searchResult, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("query", title)
	if year != "" {
		q.Set(yearParam, year)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.host, path, q.Encode())

	var decoded searchResponse
	_, err := request.FetchWithRetry(ctx, c.http, c.limiter, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, reqURL, nil)
	}, nil, func(body []byte) error {
		return json.Unmarshal(body, &decoded)
	}, c.log)
	if err != nil {
		return nil, fmt.Errorf("searching %s for %q: %w", path, title, err)
	}
	return decoded.Results, nil
}
