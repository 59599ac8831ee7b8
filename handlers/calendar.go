package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"villacal/models"
	"villacal/services/calendar"
	"villacal/utils"
)

// CalendarHandler exposes the availability pipeline over HTTP.
type CalendarHandler struct {
	Agg   *calendar.Aggregator
	Cache *calendar.FeedCache
}

func NewCalendarHandler(agg *calendar.Aggregator, cache *calendar.FeedCache) *CalendarHandler {
	return &CalendarHandler{Agg: agg, Cache: cache}
}

// AvailabilityHandler returns the merged busy intervals across all configured
// sources. This is the single read operation the booking UI consumes. An
// empty list means "no known bookings", never an error.
func (h *CalendarHandler) AvailabilityHandler(c *gin.Context) {
	force := c.Query("forceRefresh") == "true"

	intervals := h.Agg.MergedBusyIntervals(c.Request.Context(), force)
	if intervals == nil {
		intervals = []models.BusyInterval{}
	}

	c.JSON(http.StatusOK, gin.H{
		"intervals": intervals,
		"sources":   h.Agg.SourceStates(),
	})
}

// ICalProxyHandler proxies a single calendar feed, returning its events
// filtered down to merged busy ranges as ICS text. Responds 500 only when
// the upstream fails and no cached copy exists.
func (h *CalendarHandler) ICalProxyHandler(c *gin.Context) {
	feedURL := c.Query("url")
	if feedURL == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing required query parameter", "url")
		return
	}
	force := c.Query("forceRefresh") == "true"

	body, hit, info, err := h.Agg.SourceCalendar(c.Request.Context(), feedURL, force)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch calendar feed", err.Error())
		return
	}

	sourceName := h.Agg.SourceNameFor(feedURL)
	merged := calendar.Merge(calendar.ParseFeed(body, sourceName))

	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.Header("X-Cache-Info", info)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar.RenderICS(merged, sourceName)))
}

// CacheInfoHandler summarizes the feed cache and the last per-source
// aggregation outcomes. Diagnostics only.
func (h *CalendarHandler) CacheInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"entryCount": h.Cache.Len(),
		"ttlSeconds": int64(h.Cache.TTL().Seconds()),
		"entries":    h.Cache.InfoAll(),
		"sources":    h.Agg.SourceStates(),
	})
}

// ClearCacheHandler drops every cached feed. Deliberately unauthenticated.
func (h *CalendarHandler) ClearCacheHandler(c *gin.Context) {
	n := h.Cache.Clear()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": fmt.Sprintf("cleared %d cached feed(s)", n),
	})
}
