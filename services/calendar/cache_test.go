package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeedURL = "https://www.airbnb.com/calendar/ical/123.ics?s=secret"

func TestFeedCacheMissingKey(t *testing.T) {
	fc := NewFeedCache(time.Hour)

	_, _, ok := fc.Get(testFeedURL)
	assert.False(t, ok)

	_, ok = fc.Info(testFeedURL)
	assert.False(t, ok)
}

func TestFeedCacheFreshnessBoundary(t *testing.T) {
	fc := NewFeedCache(time.Hour)

	t0 := time.Now()
	fc.now = func() time.Time { return t0 }
	fc.Put(testFeedURL, "BEGIN:VCALENDAR")

	fc.now = func() time.Time { return t0.Add(time.Hour - time.Second) }
	body, fresh, ok := fc.Get(testFeedURL)
	require.True(t, ok)
	assert.True(t, fresh)
	assert.Equal(t, "BEGIN:VCALENDAR", body)

	fc.now = func() time.Time { return t0.Add(time.Hour + time.Second) }
	body, fresh, ok = fc.Get(testFeedURL)
	require.True(t, ok)
	assert.False(t, fresh, "entry past TTL must be stale")
	assert.Equal(t, "BEGIN:VCALENDAR", body, "stale body must remain readable for fallback")
}

func TestFeedCachePutOverwrites(t *testing.T) {
	fc := NewFeedCache(time.Hour)

	t0 := time.Now()
	fc.now = func() time.Time { return t0 }
	fc.Put(testFeedURL, "old")

	fc.now = func() time.Time { return t0.Add(2 * time.Hour) }
	fc.Put(testFeedURL, "new")

	body, fresh, ok := fc.Get(testFeedURL)
	require.True(t, ok)
	assert.True(t, fresh, "overwrite must reset the fetch timestamp")
	assert.Equal(t, "new", body)
	assert.Equal(t, 1, fc.Len())
}

func TestFeedCacheInfo(t *testing.T) {
	fc := NewFeedCache(time.Hour)

	t0 := time.Now()
	fc.now = func() time.Time { return t0 }
	fc.Put(testFeedURL, "12345")

	fc.now = func() time.Time { return t0.Add(10 * time.Minute) }
	info, ok := fc.Info(testFeedURL)
	require.True(t, ok)
	assert.Equal(t, int64(600), info.AgeSeconds)
	assert.Equal(t, int64(3000), info.ExpiresInSeconds)
	assert.Equal(t, 5, info.SizeBytes)
	assert.True(t, info.Fresh)

	fc.now = func() time.Time { return t0.Add(2 * time.Hour) }
	info, ok = fc.Info(testFeedURL)
	require.True(t, ok)
	assert.False(t, info.Fresh)
	assert.Negative(t, info.ExpiresInSeconds)
}

func TestFeedCacheInfoAllRedactsURLs(t *testing.T) {
	fc := NewFeedCache(time.Hour)
	fc.Put(testFeedURL, "body")

	all := fc.InfoAll()
	require.Len(t, all, 1)
	for key := range all {
		assert.NotContains(t, key, "secret")
	}
}

func TestFeedCacheClear(t *testing.T) {
	fc := NewFeedCache(time.Hour)
	fc.Put("https://a.example/cal.ics", "a")
	fc.Put("https://b.example/cal.ics", "b")

	assert.Equal(t, 2, fc.Clear())
	assert.Equal(t, 0, fc.Len())
	assert.Equal(t, 0, fc.Clear())

	_, _, ok := fc.Get("https://a.example/cal.ics")
	assert.False(t, ok)
}
