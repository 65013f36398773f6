package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/debridav/debridav/internal/logger"
)

// limiter.go implements the adaptive per-process rate limiter (§4.A): a
// single in-flight token whose inter-token interval doubles on throttle and
// decays on success, built on golang.org/x/time/rate the way the teacher's
// internal/request already consumes it, driving the interval via
// rate.Limiter.SetLimit instead of a bespoke timestamp comparison.

const (
	Baseline = 100 * time.Millisecond
	Max      = 2000 * time.Millisecond

	maxRetryAfter = 300 * time.Second
	decayStep     = 10 * time.Millisecond
)

type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	rl       *rate.Limiter
	log      zerolog.Logger
}

func New() *Limiter {
	return &Limiter{
		interval: Baseline,
		rl:       rate.NewLimiter(rate.Every(Baseline), 1),
		log:      logger.New("ratelimit"),
	}
}

// Acquire blocks until a token is available or ctx is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.rl.Wait(ctx)
}

// RecordThrottle doubles the interval (or honors Retry-After if larger),
// capped at Max, per §4.A: I ← min(MAX, max(I*2, retry_after*1000)).
func (l *Limiter) RecordThrottle(retryAfterSecs *int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	candidate := l.interval * 2
	if retryAfterSecs != nil {
		ra := time.Duration(*retryAfterSecs) * time.Second
		if ra > maxRetryAfter {
			ra = maxRetryAfter
		}
		if ra > candidate {
			candidate = ra
		}
	}
	if candidate > Max {
		candidate = Max
	}

	l.interval = candidate
	l.rl.SetLimit(rate.Every(l.interval))
	l.log.Debug().Dur("interval", l.interval).Msg("rate limiter throttled, backing off")
}

// RecordSuccess decays the interval by a fixed step, floored at Baseline.
func (l *Limiter) RecordSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.interval - decayStep
	if next < Baseline {
		next = Baseline
	}
	if next == l.interval {
		return
	}

	l.interval = next
	l.rl.SetLimit(rate.Every(l.interval))
}

// Interval reports the current inter-token interval, for tests and metrics.
func (l *Limiter) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}
