package collectors

import (
	"time"

	"github.com/colinpriest/austcyberevents/pkg/ratelimit"
	"github.com/colinpriest/austcyberevents/pkg/resilience"
)

// testDecorator returns a Decorator with default retry policy. Tests
// that exercise a failure path use an auth-classed error so the
// retrier gives up on the first attempt instead of sleeping through a
// backoff schedule.
func testDecorator() *resilience.Decorator {
	retrier := resilience.NewRetrier(resilience.RetryConfig{})
	breaker := resilience.NewBreaker(resilience.BreakerConfig{})
	return resilience.NewDecorator(retrier, breaker)
}

// nonRetryableErr is an error the retrier will not retry, for testing
// failure paths without waiting through a real backoff schedule.
var nonRetryableErr = &resilience.HTTPStatusError{StatusCode: 401, Body: "unauthorized"}

// testLimiter returns a Registry with a generous limit so tests never
// block on rate admission.
func testLimiter() *ratelimit.Registry {
	r := ratelimit.NewRegistry()
	r.SetLimit("news-events", 1000, 1000)
	r.SetLimit("llm-search", 1000, 1000)
	r.SetLimit("web-search", 1000, 1000)
	r.SetLimit("regulator-test", 1000, 1000)
	r.SetLimit("curated-test", 1000, 1000)
	return r
}

func dateRange(startDaysAgo, endDaysAgo int) DateRange {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	return DateRange{
		Start: now.AddDate(0, 0, -startDaysAgo),
		End:   now.AddDate(0, 0, -endDaysAgo),
	}
}
