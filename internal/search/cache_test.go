package search

import (
	"testing"
	"time"
)

func TestCache(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newFixedCache := func(ttl time.Duration) (*Cache, *time.Time) {
		now := base
		cache := NewCacheWithClock(ttl, func() time.Time { return now })
		return cache, &now
	}

	t.Run("FreshEntryIsServed", func(t *testing.T) {
		cache, now := newFixedCache(time.Hour)

		req := Request{Phrase: "jazz", Kind: KindSongs, Timestamp: base}
		cache.Put(req, &Response{ExtractedTags: []string{"jazz"}})

		*now = base.Add(30 * time.Minute)

		cached, ok := cache.Get(Request{Phrase: "jazz", Kind: KindSongs, Timestamp: *now})
		if !ok {
			t.Fatal("expected a cache hit within the TTL")
		}
		if len(cached.ExtractedTags) != 1 {
			t.Errorf("expected stored response, got %+v", cached)
		}
	})

	t.Run("StaleEntryIsEvicted", func(t *testing.T) {
		cache, now := newFixedCache(time.Hour)

		req := Request{Phrase: "jazz", Kind: KindSongs, Timestamp: base}
		cache.Put(req, &Response{})

		*now = base.Add(90 * time.Minute)

		if _, ok := cache.Get(Request{Phrase: "jazz", Kind: KindSongs, Timestamp: *now}); ok {
			t.Fatal("expected a miss after the TTL elapsed")
		}
		if cache.Len() != 0 {
			t.Errorf("expected the stale entry to be evicted, %d entries remain", cache.Len())
		}
	})

	t.Run("TimestampIgnoredForEquality", func(t *testing.T) {
		cache, _ := newFixedCache(time.Hour)

		cache.Put(Request{Phrase: "jazz", Kind: KindSongs, Timestamp: base}, &Response{})

		later := Request{Phrase: "jazz", Kind: KindSongs, Timestamp: base.Add(time.Minute)}
		if _, ok := cache.Get(later); !ok {
			t.Error("requests with equal phrase and kind must share an entry")
		}
	})

	t.Run("KindSeparatesEntries", func(t *testing.T) {
		cache, _ := newFixedCache(time.Hour)

		cache.Put(Request{Phrase: "jazz", Kind: KindSongs, Timestamp: base}, &Response{})

		if _, ok := cache.Get(Request{Phrase: "jazz", Kind: KindAlbums, Timestamp: base}); ok {
			t.Error("a songs response must not answer an albums request")
		}
	})
}
