package calendar

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"villacal/utils"
)

// feedEntry is what the cache stores per feed URL: the last successfully
// fetched body and when it arrived.
type feedEntry struct {
	Body      string
	FetchedAt time.Time
}

// EntryInfo is diagnostic metadata for one cached feed.
type EntryInfo struct {
	AgeSeconds       int64 `json:"ageSeconds"`
	ExpiresInSeconds int64 `json:"expiresInSeconds"` // negative once stale
	SizeBytes        int   `json:"sizeBytes"`
	Fresh            bool  `json:"fresh"`
}

// FeedCache keeps the raw body of each calendar feed, keyed by URL, with a
// fixed TTL. Stale entries are deliberately retained: they are the fallback
// when an upstream is down. Everything lives in process memory and is gone
// on restart.
type FeedCache struct {
	ttl   time.Duration
	store *gocache.Cache
	now   func() time.Time
}

// NewFeedCache builds an empty cache with the given TTL.
func NewFeedCache(ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &FeedCache{
		ttl: ttl,
		// Entries carry their own FetchedAt instead of using go-cache expiry:
		// an expired-and-evicted body could no longer serve as a fallback.
		store: gocache.New(gocache.NoExpiration, 0),
		now:   time.Now,
	}
}

// Get returns the stored body for key and whether it is still fresh.
// ok is false when the key was never populated.
func (fc *FeedCache) Get(key string) (body string, fresh bool, ok bool) {
	v, found := fc.store.Get(key)
	if !found {
		return "", false, false
	}
	entry := v.(feedEntry)
	return entry.Body, fc.now().Sub(entry.FetchedAt) < fc.ttl, true
}

// Put stores body under key with the current timestamp, replacing any
// previous entry.
func (fc *FeedCache) Put(key string, body string) {
	fc.store.Set(key, feedEntry{Body: body, FetchedAt: fc.now()}, gocache.NoExpiration)
}

// Info returns diagnostic metadata for one key.
func (fc *FeedCache) Info(key string) (EntryInfo, bool) {
	v, found := fc.store.Get(key)
	if !found {
		return EntryInfo{}, false
	}
	entry := v.(feedEntry)
	age := fc.now().Sub(entry.FetchedAt)
	return EntryInfo{
		AgeSeconds:       int64(age.Seconds()),
		ExpiresInSeconds: int64((fc.ttl - age).Seconds()),
		SizeBytes:        len(entry.Body),
		Fresh:            age < fc.ttl,
	}, true
}

// InfoAll returns diagnostic metadata for every cached feed, keyed by the
// redacted feed URL.
func (fc *FeedCache) InfoAll() map[string]EntryInfo {
	items := fc.store.Items()
	out := make(map[string]EntryInfo, len(items))
	for key := range items {
		if info, ok := fc.Info(key); ok {
			out[redactURL(key)] = info
		}
	}
	return out
}

// Len returns the number of cached feeds.
func (fc *FeedCache) Len() int {
	return fc.store.ItemCount()
}

// TTL returns the configured time-to-live.
func (fc *FeedCache) TTL() time.Duration {
	return fc.ttl
}

// Clear drops all entries and returns how many were removed.
func (fc *FeedCache) Clear() int {
	n := fc.store.ItemCount()
	fc.store.Flush()
	utils.GetLogger().Info("feed cache cleared", zap.Int("entries", n))
	return n
}
