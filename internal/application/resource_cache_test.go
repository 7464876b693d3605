package application

import (
	"testing"
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

func TestResourceCacheStoresAndReturnsCopies(t *testing.T) {
	current := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	cache := newResourceCache(time.Minute, func() time.Time { return current })

	original := []string{"D1", "D2"}
	cache.Store(booking.KindDesk, original)

	// Mutating the original slice should not affect the cached copy.
	original[0] = "mutated"

	cached, ok := cache.Get(booking.KindDesk)
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if cached[0] != "D1" {
		t.Fatalf("expected cached id to remain unchanged, got %s", cached[0])
	}

	cached[0] = "changed"
	again, _ := cache.Get(booking.KindDesk)
	if again[0] != "D1" {
		t.Fatalf("expected cache to return independent copy, got %s", again[0])
	}

	if _, ok := cache.Get(booking.KindRoom); ok {
		t.Fatalf("expected miss for a kind never stored")
	}
}

func TestResourceCacheExpiresEntries(t *testing.T) {
	current := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	cache := newResourceCache(time.Second, func() time.Time { return current })

	cache.Store(booking.KindRoom, []string{"R1"})
	if _, ok := cache.Get(booking.KindRoom); !ok {
		t.Fatalf("expected cache hit before expiry")
	}

	current = current.Add(2 * time.Second)
	if _, ok := cache.Get(booking.KindRoom); ok {
		t.Fatalf("expected cache entry to expire")
	}
}

func TestResourceCacheInvalidateAndDisable(t *testing.T) {
	cache := newResourceCache(time.Minute, time.Now)
	cache.Store(booking.KindDesk, []string{"D1"})
	cache.Invalidate()
	if _, ok := cache.Get(booking.KindDesk); ok {
		t.Fatalf("expected cache to be empty after invalidation")
	}

	disabled := newResourceCache(-1, time.Now)
	disabled.Store(booking.KindDesk, []string{"D1"})
	if _, ok := disabled.Get(booking.KindDesk); ok {
		t.Fatalf("expected disabled cache to never hit")
	}
	disabled.Invalidate()
}
