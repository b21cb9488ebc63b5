package rate

import (
	"fmt"
	"time"
)

// Policy bounds how often the printer's embedded web server is contacted.
type Policy struct {
	// MaxPerMinute is the token bucket capacity, refilled over one minute.
	// Zero or less disables the limit.
	MaxPerMinute int
	// CacheTTL keeps the last 2xx response and serves it while the bucket is
	// empty or a cooldown is active.
	CacheTTL time.Duration
}

// DefaultPolicy suits a Prometheus scrape every 15-30s.
func DefaultPolicy() Policy {
	return Policy{MaxPerMinute: 6, CacheTTL: 30 * time.Second}
}

// RateLimitError is returned when a request is blocked and nothing is cached.
type RateLimitError struct {
	Printer string
	Reason  string
	RetryAt time.Time
}

func (e RateLimitError) Error() string {
	if e.RetryAt.IsZero() {
		return fmt.Sprintf("%s rate limited: %s", e.Printer, e.Reason)
	}
	return fmt.Sprintf("%s rate limited: %s (retry at %s)", e.Printer, e.Reason, e.RetryAt.UTC().Format(time.RFC3339))
}

type Decision struct {
	Allowed bool
	Reason  string
	RetryAt time.Time
}
