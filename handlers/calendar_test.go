package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villacal/config"
	"villacal/services/calendar"
)

const testFeed = "BEGIN:VCALENDAR\r\n" +
	"PRODID:-//Test//EN\r\n" +
	"VERSION:2.0\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART;VALUE=DATE:20250701\r\n" +
	"DTEND;VALUE=DATE:20250706\r\n" +
	"UID:t1@example.com\r\n" +
	"SUMMARY:Reserved\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

type testEnv struct {
	router  *gin.Engine
	feedURL string
}

func newTestEnv(t *testing.T, upstream http.HandlerFunc) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cache := calendar.NewFeedCache(time.Hour)
	fetcher := calendar.NewFetcher(2 * time.Second)
	agg := calendar.NewAggregator(
		[]config.CalendarSource{{Name: "Airbnb", URL: srv.URL}},
		cache, fetcher,
	)
	h := NewCalendarHandler(agg, cache)

	router := gin.New()
	router.GET("/api/availability", h.AvailabilityHandler)
	router.GET("/api/ical", h.ICalProxyHandler)
	router.GET("/api/cache-info", h.CacheInfoHandler)
	router.GET("/api/clear-cache", h.ClearCacheHandler)

	return testEnv{router: router, feedURL: srv.URL}
}

func serveFeed(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(testFeed))
}

func doGet(env testEnv, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	env.router.ServeHTTP(w, req)
	return w
}

func TestAvailabilityHandler(t *testing.T) {
	env := newTestEnv(t, serveFeed)

	w := doGet(env, "/api/availability")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Intervals []struct {
			Start  string `json:"start"`
			End    string `json:"end"`
			Source string `json:"source"`
		} `json:"intervals"`
		Sources map[string]struct {
			State string `json:"state"`
		} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Intervals, 1)
	assert.Equal(t, "2025-07-01", resp.Intervals[0].Start)
	assert.Equal(t, "2025-07-05", resp.Intervals[0].End, "exclusive DTEND minus one day")
	assert.Equal(t, "Airbnb", resp.Intervals[0].Source)
	assert.Equal(t, "fetched", resp.Sources["Airbnb"].State)
}

func TestAvailabilityHandlerEmptyIsNotAnError(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	w := doGet(env, "/api/availability")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"intervals":[]`)
}

func TestICalProxyHandlerMissingURL(t *testing.T) {
	env := newTestEnv(t, serveFeed)

	w := doGet(env, "/api/ical")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestICalProxyHandlerMissThenHit(t *testing.T) {
	env := newTestEnv(t, serveFeed)
	path := fmt.Sprintf("/api/ical?url=%s", env.feedURL)

	w := doGet(env, path)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.NotEmpty(t, w.Header().Get("X-Cache-Info"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, w.Body.String(), "BEGIN:VEVENT")

	w = doGet(env, path)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
}

func TestICalProxyHandlerUpstreamFailureNoFallback(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	w := doGet(env, fmt.Sprintf("/api/ical?url=%s", env.feedURL))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
	assert.NotEmpty(t, resp["details"])
}

func TestCacheInfoHandler(t *testing.T) {
	env := newTestEnv(t, serveFeed)
	doGet(env, "/api/availability") // populate the cache

	w := doGet(env, "/api/cache-info")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		EntryCount int                    `json:"entryCount"`
		TTLSeconds int64                  `json:"ttlSeconds"`
		Entries    map[string]interface{} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.EntryCount)
	assert.Equal(t, int64(3600), resp.TTLSeconds)
	assert.Len(t, resp.Entries, 1)
}

func TestClearCacheHandler(t *testing.T) {
	env := newTestEnv(t, serveFeed)
	doGet(env, "/api/availability") // populate the cache

	w := doGet(env, "/api/clear-cache")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cleared 1")

	w = doGet(env, "/api/cache-info")
	assert.Contains(t, w.Body.String(), `"entryCount":0`)
}
