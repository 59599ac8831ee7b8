package calendar

import "fmt"

// UpstreamError reports a failed fetch of one calendar feed: either the
// transport failed (Err set) or the upstream answered with a non-2xx status.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream fetch %s failed: %v", redactURL(e.URL), e.Err)
	}
	return fmt.Sprintf("upstream fetch %s failed: status %d", redactURL(e.URL), e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
