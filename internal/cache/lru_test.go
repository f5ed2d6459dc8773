package cache

import (
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}

	// "a" was touched, so "b" is the eviction candidate.
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a lost after eviction: %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[string](4, 10*time.Millisecond)
	c.Set("k", "v")

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}

	c.Set("k2", "v2")
	time.Sleep(20 * time.Millisecond)
	if cleaned := c.CleanExpired(); cleaned != 1 {
		t.Fatalf("CleanExpired() = %d, want 1", cleaned)
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](16, time.Minute)
	c.Set("u1|2025-01", 1)
	c.Set("u1|2025-02", 2)
	c.Set("u2|2025-01", 3)

	if removed := c.DeletePrefix("u1|"); removed != 2 {
		t.Fatalf("DeletePrefix() = %d, want 2", removed)
	}
	if _, ok := c.Get("u1|2025-01"); ok {
		t.Fatal("u1 entry survived prefix delete")
	}
	if v, ok := c.Get("u2|2025-01"); !ok || v != 3 {
		t.Fatal("u2 entry was dropped")
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	c.Set("k", 1)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry survived delete")
	}
	// Deleting a missing key is a no-op.
	c.Delete("missing")
}
