package presales

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache[string, int](time.Minute)

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should report absent")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache[string, int](10 * time.Millisecond)

	c.Set("a", 1)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should not be returned")
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d, want 0 after lazy removal", c.Size())
	}
}

func TestCacheMaxSizeEviction(t *testing.T) {
	c := NewCache[string, int](time.Minute, WithMaxSize[string, int](2))

	c.Set("a", 1)
	time.Sleep(time.Millisecond)
	c.Set("b", 2)
	time.Sleep(time.Millisecond)
	c.Set("c", 3)

	if c.Size() != 2 {
		t.Fatalf("Size = %d, want 2", c.Size())
	}
	// "a" expires soonest, so it was evicted.
	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest entry should remain")
	}
}

func TestCacheDelete(t *testing.T) {
	c := NewCache[string, int](time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry should be absent")
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache[string, int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if n := c.Clear(); n != 2 {
		t.Errorf("Clear = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d, want 0", c.Size())
	}
}

func TestCacheCleanup(t *testing.T) {
	c := NewCache[string, int](10 * time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(30 * time.Millisecond)
	c.Set("c", 3)

	if n := c.Cleanup(); n != 2 {
		t.Errorf("Cleanup = %d, want 2", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("fresh entry should survive cleanup")
	}
}
