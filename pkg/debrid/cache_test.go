package debrid

import (
	"fmt"
	"testing"
	"time"
)

func TestUnrestrictCache_GetMiss(t *testing.T) {
	c := newUnrestrictCache()
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss on empty cache")
	}
}

func TestUnrestrictCache_PutThenGet(t *testing.T) {
	c := newUnrestrictCache()
	c.Put("link1", UnrestrictResponse{Download: "https://example.com/1"})

	got, ok := c.Get("link1")
	if !ok {
		t.Fatalf("expected hit after put")
	}
	if got.Download != "https://example.com/1" {
		t.Fatalf("unexpected cached value: %+v", got)
	}
}

func TestUnrestrictCache_ExpiredEntryIsAMiss(t *testing.T) {
	c := newUnrestrictCache()
	c.entries["link1"] = cacheEntry{
		response: UnrestrictResponse{Download: "https://example.com/1"},
		cachedAt: time.Now().Add(-2 * unrestrictTTL),
	}

	if _, ok := c.Get("link1"); ok {
		t.Fatalf("expected expired entry to be a miss")
	}
}

func TestUnrestrictCache_EvictsOldestOver10000Entries(t *testing.T) {
	c := newUnrestrictCache()

	for i := 0; i < maxCacheEntries; i++ {
		c.Put(fmt.Sprintf("link%d", i), UnrestrictResponse{Download: fmt.Sprintf("https://example.com/%d", i)})
	}
	if c.Len() != maxCacheEntries {
		t.Fatalf("expected %d entries, got %d", maxCacheEntries, c.Len())
	}

	c.Put("link-overflow", UnrestrictResponse{Download: "https://example.com/overflow"})
	if c.Len() != maxCacheEntries {
		t.Fatalf("expected eviction to hold size at %d, got %d", maxCacheEntries, c.Len())
	}

	if _, ok := c.Get("link0"); ok {
		t.Fatalf("expected oldest entry to have been evicted")
	}
	if _, ok := c.Get("link-overflow"); !ok {
		t.Fatalf("expected newest entry to survive eviction")
	}
}
