package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"villacal/config"
	"villacal/models"
	"villacal/utils"
)

// SourceState is the terminal state of one feed within one aggregation pass.
type SourceState string

const (
	// StateFresh: served from a cache entry younger than the TTL.
	StateFresh SourceState = "cache-fresh"
	// StateFetched: cache miss or forced refresh, upstream fetch succeeded.
	StateFetched SourceState = "fetched"
	// StateStaleFallback: upstream fetch failed, served the stale cached body.
	StateStaleFallback SourceState = "stale-fallback"
	// StateEmpty: upstream fetch failed and no cached body exists; the source
	// contributed zero intervals.
	StateEmpty SourceState = "empty"
)

// SourceStatus is the last known outcome for one configured feed.
type SourceStatus struct {
	State     SourceState `json:"state"`
	CheckedAt time.Time   `json:"checkedAt"`
	Error     string      `json:"error,omitempty"`
	Intervals int         `json:"intervals"`
}

// Aggregator orchestrates the fetch/cache/parse/merge pipeline across all
// configured calendar sources. A single source failing never fails the
// aggregation; the worst case is an empty result.
type Aggregator struct {
	sources []config.CalendarSource
	cache   *FeedCache
	fetcher *Fetcher

	mu         sync.RWMutex
	lastStates map[string]SourceStatus
}

// NewAggregator wires the pipeline together. The cache is injected so tests
// and multiple aggregators can hold independent instances.
func NewAggregator(sources []config.CalendarSource, cache *FeedCache, fetcher *Fetcher) *Aggregator {
	return &Aggregator{
		sources:    sources,
		cache:      cache,
		fetcher:    fetcher,
		lastStates: make(map[string]SourceStatus, len(sources)),
	}
}

// MergedBusyIntervals returns the union of all sources' busy ranges as a
// minimal ordered list. With force set, fresh cache entries are bypassed.
// An empty result means "no known bookings", not a fault: callers cannot
// distinguish a quiet calendar from every source being down, by design.
func (a *Aggregator) MergedBusyIntervals(ctx context.Context, force bool) []models.BusyInterval {
	logger := utils.GetLogger()

	perSource := make([][]models.BusyInterval, len(a.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			body, state, fetchErr := a.sourceBody(gctx, src.URL, force)

			var intervals []models.BusyInterval
			if state != StateEmpty {
				intervals = ParseFeed(body, src.Name)
			}
			perSource[i] = intervals

			a.recordState(src.Name, state, fetchErr, len(intervals))
			return nil
		})
	}
	// Workers degrade instead of erroring, so Wait never returns one.
	_ = g.Wait()

	var combined []models.BusyInterval
	for _, intervals := range perSource {
		combined = append(combined, intervals...)
	}
	merged := Merge(combined)

	logger.Info("availability aggregated",
		zap.Int("sources", len(a.sources)),
		zap.Int("raw_intervals", len(combined)),
		zap.Int("merged_intervals", len(merged)),
		zap.Bool("force", force))
	return merged
}

// SourceCalendar resolves the raw feed body for a single URL, applying the
// same cache ladder as an aggregation pass. hit reports whether the body came
// out of the cache (fresh or stale); info is a short diagnostic string for
// the X-Cache-Info header. It errors only when the fetch fails AND no cached
// body exists.
func (a *Aggregator) SourceCalendar(ctx context.Context, feedURL string, force bool) (body string, hit bool, info string, err error) {
	body, state, fetchErr := a.sourceBody(ctx, feedURL, force)

	switch state {
	case StateFresh:
		entry, _ := a.cache.Info(feedURL)
		return body, true, fmt.Sprintf("fresh, age %ds, expires in %ds", entry.AgeSeconds, entry.ExpiresInSeconds), nil
	case StateFetched:
		return body, false, fmt.Sprintf("fetched upstream, %d bytes", len(body)), nil
	case StateStaleFallback:
		entry, _ := a.cache.Info(feedURL)
		return body, true, fmt.Sprintf("stale fallback, age %ds, upstream error: %v", entry.AgeSeconds, fetchErr), nil
	default:
		return "", false, "", fetchErr
	}
}

// sourceBody walks the per-source ladder: fresh cache, then upstream fetch,
// then stale cache, then nothing.
func (a *Aggregator) sourceBody(ctx context.Context, feedURL string, force bool) (string, SourceState, error) {
	logger := utils.GetLogger()

	if !force {
		if body, fresh, ok := a.cache.Get(feedURL); ok && fresh {
			return body, StateFresh, nil
		}
	}

	body, err := a.fetcher.Fetch(ctx, feedURL)
	if err == nil {
		a.cache.Put(feedURL, body)
		return body, StateFetched, nil
	}

	if body, _, ok := a.cache.Get(feedURL); ok {
		logger.Warn("upstream fetch failed, serving stale cached feed",
			zap.String("url", redactURL(feedURL)), zap.Error(err))
		return body, StateStaleFallback, err
	}

	logger.Warn("upstream fetch failed with no cached fallback",
		zap.String("url", redactURL(feedURL)), zap.Error(err))
	return "", StateEmpty, err
}

// SourceNameFor maps a configured feed URL back to its display name.
func (a *Aggregator) SourceNameFor(feedURL string) string {
	for _, src := range a.sources {
		if src.URL == feedURL {
			return src.Name
		}
	}
	return "Calendar"
}

// SourceStates returns the last recorded outcome per source name.
func (a *Aggregator) SourceStates() map[string]SourceStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]SourceStatus, len(a.lastStates))
	for name, st := range a.lastStates {
		out[name] = st
	}
	return out
}

func (a *Aggregator) recordState(name string, state SourceState, err error, intervals int) {
	status := SourceStatus{
		State:     state,
		CheckedAt: time.Now().UTC(),
		Intervals: intervals,
	}
	if err != nil {
		status.Error = err.Error()
	}
	a.mu.Lock()
	a.lastStates[name] = status
	a.mu.Unlock()
}
