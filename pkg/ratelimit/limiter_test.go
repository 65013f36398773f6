package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestRecordThrottle_DoublesInterval(t *testing.T) {
	l := New()

	l.RecordThrottle(nil)
	if got := l.Interval(); got != Baseline*2 {
		t.Fatalf("expected interval %s after first throttle, got %s", Baseline*2, got)
	}

	l.RecordThrottle(nil)
	if got := l.Interval(); got != Baseline*4 {
		t.Fatalf("expected interval %s after second throttle, got %s", Baseline*4, got)
	}
}

func TestRecordThrottle_CapsAtMax(t *testing.T) {
	l := New()
	for i := 0; i < 20; i++ {
		l.RecordThrottle(nil)
	}
	if got := l.Interval(); got != Max {
		t.Fatalf("expected interval capped at %s, got %s", Max, got)
	}
}

func TestRecordThrottle_RetryAfterCappedAt300s(t *testing.T) {
	l := New()
	huge := 1_000_000
	l.RecordThrottle(&huge)
	if got := l.Interval(); got != Max {
		t.Fatalf("expected retry-after to cap at %s via Max, got %s", Max, got)
	}
}

func TestRecordThrottle_HonorsLargerRetryAfter(t *testing.T) {
	l := New()
	secs := 1
	l.RecordThrottle(&secs)
	if got := l.Interval(); got != time.Second {
		t.Fatalf("expected retry-after of 1s to beat the doubled interval and set it to %s, got %s", time.Second, got)
	}
}

func TestRecordSuccess_DecaysTowardBaseline(t *testing.T) {
	l := New()
	l.RecordThrottle(nil)
	l.RecordThrottle(nil)

	before := l.Interval()
	l.RecordSuccess()
	after := l.Interval()

	if after != before-decayStep {
		t.Fatalf("expected interval to decay by %s, got before=%s after=%s", decayStep, before, after)
	}
}

func TestRecordSuccess_FloorsAtBaseline(t *testing.T) {
	l := New()
	for i := 0; i < 50; i++ {
		l.RecordSuccess()
	}
	if got := l.Interval(); got != Baseline {
		t.Fatalf("expected interval floored at %s, got %s", Baseline, got)
	}
}

func TestAcquire_ReturnsWithinReasonableTime(t *testing.T) {
	l := New()
	start := time.Now()
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("first acquire should not block meaningfully")
	}
}
