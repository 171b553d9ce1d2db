package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const DefaultUserAgent = "uptimewatch/1.0 (+https://github.com/hamed0406/uptimewatch)"

type HTTPChecker struct {
	Client    *http.Client
	UserAgent string
}

func NewHTTPChecker(timeout time.Duration, userAgent string) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPChecker{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Check sends a single HEAD request. Only 2xx counts as up; there is no retry
// and no GET fallback.
func (h *HTTPChecker) Check(ctx context.Context, target string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return Result{Up: false, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", h.UserAgent)
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := h.Client.Do(req)
	if err != nil {
		return Result{Up: false, Reason: err.Error()}
	}
	defer resp.Body.Close()
	ms := time.Since(start).Milliseconds()

	res := Result{
		Up:             Classify(resp.StatusCode),
		StatusCode:     resp.StatusCode,
		ResponseTimeMS: &ms,
	}
	if !res.Up {
		res.Reason = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return res
}

// Classify reports whether a status code counts as up: the inclusive range [200, 299].
func Classify(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}
