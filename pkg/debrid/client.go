package debrid

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/debridav/debridav/internal/config"
	"github.com/debridav/debridav/internal/logger"
	"github.com/debridav/debridav/internal/request"
	"github.com/debridav/debridav/pkg/ratelimit"
)

// client.go builds the debrid API client (§4.B), adapted from the
// teacher's pkg/realdebrid/client.go. Unlike the teacher's split
// general/torrents rate limiters, §4.A calls for calls to be "serialized
// per-process for the debrid domain" (singular), so one shared
// *ratelimit.Limiter governs every call this client makes.
type Client struct {
	host    string
	http    *request.Client
	limiter *ratelimit.Limiter
	cache   *unrestrictCache
	log     zerolog.Logger
}

const defaultHost = "https://api.real-debrid.com/rest/1.0"

// New builds a debrid client from the process configuration.
func New(cfg *config.Config) *Client {
	log := logger.New("debrid")

	httpClient := request.New(
		request.WithTimeout(60*time.Second),
		request.WithHeaders(map[string]string{
			"Authorization": fmt.Sprintf("Bearer %s", cfg.RDAPIToken),
		}),
		request.WithLogger(log),
	)

	return &Client{
		host:    defaultHost,
		http:    httpClient,
		limiter: ratelimit.New(),
		cache:   newUnrestrictCache(),
		log:     log,
	}
}
