package debrid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/debridav/debridav/internal/request"
)

// unrestrict.go implements unrestrict and evict_expired_cache (§4.B),
// grounded on the teacher's pkg/realdebrid/unrestrict.go dual 503/429
// retry strategy, generalized onto the unified retry machine: a 503 is
// terminal (mapped to request.ErrUnavailable, driving repair), while 429s
// and 5xx flow through the shared throttle/backoff path like any other
// call.
func (c *Client) Unrestrict(ctx context.Context, link string) (UnrestrictResponse, error) {
	if cached, ok := c.cache.Get(link); ok {
		return cached, nil
	}

	form := url.Values{"link": {link}}

	terminal := request.TerminalStatuses{
		http.StatusServiceUnavailable: request.NewTerminalError(http.StatusServiceUnavailable, "unavailable", "hoster unavailable"),
		http.StatusNotFound:           request.NewTerminalError(http.StatusNotFound, "not_found", "link broken"),
	}

	var resp UnrestrictResponse
	_, err := request.FetchWithRetry(ctx, c.http, c.limiter, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.host+"/unrestrict/link", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, terminal, func(body []byte) error {
		return json.Unmarshal(body, &resp)
	}, c.log)
	if err != nil {
		return UnrestrictResponse{}, fmt.Errorf("unrestricting link: %w", err)
	}

	c.cache.Put(link, resp)
	return resp, nil
}

// EvictExpiredCache drops every cache entry past its TTL, independent of
// the count-triggered eviction Put already performs.
func (c *Client) EvictExpiredCache() {
	c.cache.mu.Lock()
	defer c.cache.mu.Unlock()
	c.cache.evictLocked()
}

// CacheSize reports the current unrestrict cache size, for tests and
// metrics.
func (c *Client) CacheSize() int {
	return c.cache.Len()
}
