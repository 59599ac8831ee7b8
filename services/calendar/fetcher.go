package calendar

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"villacal/utils"
)

// Fetcher performs the outbound HTTP GET for one calendar feed. It does not
// retry and it does not consult the cache; degradation on failure is the
// aggregator's call.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher whose requests give up after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads the raw feed text at feedURL. A transport error, timeout or
// non-2xx response yields an *UpstreamError.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (string, error) {
	logger := utils.GetLogger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", &UpstreamError{URL: feedURL, Err: err}
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Warn("calendar fetch failed", zap.String("url", redactURL(feedURL)), zap.Error(err))
		return "", &UpstreamError{URL: feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("calendar fetch returned non-success status",
			zap.String("url", redactURL(feedURL)), zap.Int("status", resp.StatusCode))
		return "", &UpstreamError{URL: feedURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{URL: feedURL, Err: err}
	}

	logger.Debug("calendar fetch succeeded",
		zap.String("url", redactURL(feedURL)), zap.Int("bytes", len(body)))
	return string(body), nil
}

// redactURL strips the path and query from a feed URL before logging.
// Booking-platform export URLs embed per-property secrets in both.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "(unparseable url)"
	}
	return u.Scheme + "://" + u.Host + "/..."
}
