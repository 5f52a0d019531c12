package cache

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

func TestSetLoadDel(t *testing.T) {
	c := InitStorage()

	c.Set("k", "v", time.Minute)
	if got := c.Load("k"); got != "v" {
		t.Fatalf("Load = %v, want v", got)
	}

	c.Del("k")
	if got := c.Load("k"); got != nil {
		t.Fatalf("Load after Del = %v, want nil", got)
	}
}

func TestExpiration(t *testing.T) {
	c := InitStorage()

	c.Set("short", "v", 50*time.Millisecond)
	c.SetNoExp("forever", "v")

	time.Sleep(200 * time.Millisecond)

	if got := c.Load("short"); got != nil {
		t.Fatalf("expired key still present: %v", got)
	}
	if got := c.Load("forever"); got != "v" {
		t.Fatalf("no-expiry key lost: %v", got)
	}
}

func TestExpirationSkipsReplacedValue(t *testing.T) {
	c := InitStorage()

	c.Set("k", "old", 50*time.Millisecond)
	c.Set("k", "new", time.Minute)

	time.Sleep(200 * time.Millisecond)

	if got := c.Load("k"); got != "new" {
		t.Fatalf("replaced value evicted by stale expiry: %v", got)
	}
}

func TestConcurrentSet(t *testing.T) {
	c := InitStorage()

	var keys []string
	for range 1000 {
		k := gofakeit.UUID()
		keys = append(keys, k)
		go c.Set(k, k, time.Minute)
	}

	time.Sleep(100 * time.Millisecond)

	for _, k := range keys {
		if got := c.Load(k); got != k {
			t.Fatalf("Load(%s) = %v", k, got)
		}
	}
}

func TestLoadOrSet(t *testing.T) {
	c := InitStorage()

	if got := c.LoadOrSet("k", 1, time.Minute); got != 1 {
		t.Fatalf("first LoadOrSet = %v, want 1", got)
	}
	if got := c.LoadOrSet("k", 2, time.Minute); got != 1 {
		t.Fatalf("second LoadOrSet = %v, want existing 1", got)
	}
}
