package debrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/debridav/debridav/internal/request"
)

// magnet.go implements add_magnet, select_files, and delete (§4.B),
// grounded on the teacher's pkg/realdebrid/torrents.go AddMagnet/
// SelectFiles/DeleteTorrent.

// AddMagnet submits a hash for download and returns the new torrent id.
// Not idempotent: calling it twice with the same hash creates two items.
func (c *Client) AddMagnet(ctx context.Context, hash string) (string, error) {
	magnet := fmt.Sprintf("magnet:?xt=urn:btih:%s", hash)
	form := url.Values{"magnet": {magnet}}

	var resp addMagnetResponse
	_, err := request.FetchWithRetry(ctx, c.http, c.limiter, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.host+"/torrents/addMagnet", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, nil, func(body []byte) error {
		return json.Unmarshal(body, &resp)
	}, c.log)
	if err != nil {
		return "", fmt.Errorf("adding magnet: %w", err)
	}
	return resp.ID, nil
}

// SelectFiles marks the given file ids for download against torrent id.
func (c *Client) SelectFiles(ctx context.Context, id string, fileIDs []int) error {
	idStrs := make([]string, len(fileIDs))
	for i, id := range fileIDs {
		idStrs[i] = strconv.Itoa(id)
	}
	form := url.Values{"files": {strings.Join(idStrs, ",")}}

	terminal := request.TerminalStatuses{
		http.StatusNotFound: request.NewTerminalError(http.StatusNotFound, "not_found", "torrent not found"),
	}

	_, err := request.FetchWithRetry(ctx, c.http, c.limiter, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/torrents/selectFiles/%s", c.host, id), strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, terminal, nil, c.log)
	if err != nil {
		return fmt.Errorf("selecting files on %s: %w", id, err)
	}
	return nil
}

// Delete removes a torrent by id. A 404 is treated as success per §7's
// delete-is-idempotent rule.
func (c *Client) Delete(ctx context.Context, id string) error {
	terminal := request.TerminalStatuses{
		http.StatusNotFound: request.NewTerminalError(http.StatusNotFound, "not_found", "torrent not found"),
	}

	_, err := request.FetchWithRetry(ctx, c.http, c.limiter, func() (*http.Request, error) {
		return http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/torrents/delete/%s", c.host, id), nil)
	}, terminal, nil, c.log)

	if err != nil && errors.Is(err, request.ErrNotFound) {
		return nil
	}
	return err
}
