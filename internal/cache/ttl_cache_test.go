package cache

import (
	"testing"
	"time"
)

func TestGetMissesExpiredEntry(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, time.Nanosecond)
	time.Sleep(2 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected expired entry to read as absent")
	}
}

func TestGetReturnsLiveEntry(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 42, time.Minute)

	got, ok := c.Get("a")
	if !ok || got != 42 {
		t.Fatalf("expected 42, got %d ok=%v", got, ok)
	}
}

func TestCapacityEvictsOldestInserted(t *testing.T) {
	c := NewBoundedTTLCache[string, int](2)
	c.Set("first", 1, time.Minute)
	c.Set("second", 2, time.Minute)

	// Re-reading "first" must not protect it: eviction is insertion
	// order, not LRU.
	if _, ok := c.Get("first"); !ok {
		t.Fatalf("expected first to be present before eviction")
	}

	c.Set("third", 3, time.Minute)

	if _, ok := c.Get("first"); ok {
		t.Fatalf("expected oldest inserted entry to be evicted")
	}
	if _, ok := c.Get("second"); !ok {
		t.Fatalf("expected second to survive eviction")
	}
	if _, ok := c.Get("third"); !ok {
		t.Fatalf("expected third to be stored")
	}
}

func TestSetExistingKeyDoesNotEvict(t *testing.T) {
	c := NewBoundedTTLCache[string, int](2)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("a", 10, time.Minute)

	if got, _ := c.Get("a"); got != 10 {
		t.Fatalf("expected overwrite to 10, got %d", got)
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("overwriting an existing key must not evict others")
	}
}

func TestInvalidateClearsEverything(t *testing.T) {
	c := NewBoundedTTLCache[string, int](10)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Invalidate()

	if c.Len() != 0 {
		t.Fatalf("expected empty cache after invalidate, got %d entries", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss after invalidate")
	}
}
