package request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// retry.go implements the unified retry machine (§4.B step list): one
// attempt loop shared by the debrid and metadata clients, built on
// avast/retry-go instead of the teacher's hand-rolled backoff loop in
// Client.Do, so the terminal-vs-throttled distinction is explicit and the
// adaptive rate limiter observes every throttle.

const (
	maxTransportAttempts = 5
	transportBaseDelay   = 2 * time.Second
	transportMaxDelay    = 32 * time.Second
	maxRetryAfterSecs    = 300
)

// RateLimiter is declared locally so FetchWithRetry doesn't import
// pkg/ratelimit: pkg/ratelimit.Limiter satisfies this structurally,
// keeping internal/ below pkg/ in the dependency graph.
type RateLimiter interface {
	Acquire(ctx context.Context) error
	RecordThrottle(retryAfterSecs *int)
	RecordSuccess()
}

// TerminalStatuses maps an HTTP status code to the TerminalError it should
// produce, ending the retry loop immediately.
type TerminalStatuses map[int]*TerminalError

// Result is the outcome of a successful (2xx) fetch.
type Result struct {
	Body       []byte
	StatusCode int
}

// FetchWithRetry drives one logical call through the unified machine:
// rate-limit acquire, send, classify, retry or stop. buildReq is called on
// every attempt so the request body can be rebuilt from scratch. decode, if
// non-nil, runs on the 2xx body inside the retry loop, so a malformed body
// is retried as a transport-class failure instead of surfacing as a
// one-shot permanent error after FetchWithRetry has already returned
// success (§4.B step 6).
func FetchWithRetry(ctx context.Context, client *Client, limiter RateLimiter, buildReq func() (*http.Request, error), terminal TerminalStatuses, decode func([]byte) error, log zerolog.Logger) (*Result, error) {
	correlationID := uuid.NewString()
	var result Result

	err := retry.Do(
		func() error {
			if err := limiter.Acquire(ctx); err != nil {
				return retry.Unrecoverable(fmt.Errorf("rate limiter: %w", err))
			}

			req, err := buildReq()
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req = req.WithContext(ctx)
			req.Header.Set("X-Correlation-Id", correlationID)
			client.headersMu.RLock()
			for key, value := range client.headers {
				req.Header.Set(key, value)
			}
			client.headersMu.RUnlock()

			resp, err := client.client.Do(req)
			if err != nil {
				limiter.RecordThrottle(nil)
				log.Warn().Str("correlation_id", correlationID).Err(err).Msg("transport error, retrying")
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			if te, ok := terminal[resp.StatusCode]; ok {
				return retry.Unrecoverable(&TerminalError{StatusCode: resp.StatusCode, Code: te.Code, Message: te.Message})
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
				limiter.RecordThrottle(retryAfter)
				log.Warn().Str("correlation_id", correlationID).Int("status", resp.StatusCode).Msg("throttled, backing off")
				return fmt.Errorf("retryable status %d: %s", resp.StatusCode, string(body))
			}

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return retry.Unrecoverable(fmt.Errorf("http error %d: %s", resp.StatusCode, string(body)))
			}

			if decode != nil && len(body) > 0 {
				if err := decode(body); err != nil {
					log.Warn().Str("correlation_id", correlationID).Err(err).Msg("decoding response failed, retrying")
					return fmt.Errorf("decoding response: %w", err)
				}
			}

			limiter.RecordSuccess()
			result = Result{Body: body, StatusCode: resp.StatusCode}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxTransportAttempts),
		retry.DelayType(transportDelay),
		retry.LastErrorOnly(true),
	)

	if err != nil {
		return nil, err
	}
	return &result, nil
}

func transportDelay(n uint, _ error, _ *retry.Config) time.Duration {
	d := transportBaseDelay << n
	if d > transportMaxDelay {
		return transportMaxDelay
	}
	return d
}

func parseRetryAfter(header string) *int {
	if header == "" {
		return nil
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return nil
	}
	if secs > maxRetryAfterSecs {
		secs = maxRetryAfterSecs
	}
	return &secs
}
