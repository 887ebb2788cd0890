// Package resilience implements the retry and circuit-breaker policy
// applied to every outbound call the pipeline makes to an external
// capability (LLM, search, scraping, headless browser).
package resilience

import (
	"context"
	"errors"
	"net"
)

// ErrorClass is the outcome of classifying an error from an outbound
// call, used to decide whether and how to retry.
type ErrorClass string

const (
	ClassAuth        ErrorClass = "auth"
	ClassClient4xx   ErrorClass = "client-4xx"
	ClassRateLimit429 ErrorClass = "rate-limit-429"
	ClassServer5xx   ErrorClass = "server-5xx"
	ClassNetwork     ErrorClass = "network"
	ClassUnknown     ErrorClass = "unknown"
)

// Retryable reports whether errors of this class should be retried.
// Auth failures and non-429 client errors are not retried; everything
// else is.
func (c ErrorClass) Retryable() bool {
	switch c {
	case ClassAuth, ClassClient4xx:
		return false
	default:
		return true
	}
}

// HTTPStatusError wraps an HTTP response status for classification.
// Capability clients under pkg/capability/httpimpl return this on
// non-2xx responses so the resilience layer can classify by status
// code without depending on net/http here.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return "unexpected HTTP status " + itoa(e.StatusCode) + ": " + e.Body
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Classify categorises err into one of the retry-policy error classes.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}

	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == 401 || httpErr.StatusCode == 403:
			return ClassAuth
		case httpErr.StatusCode == 429:
			return ClassRateLimit429
		case httpErr.StatusCode >= 500:
			return ClassServer5xx
		case httpErr.StatusCode >= 400:
			return ClassClient4xx
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ClassNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassNetwork
	}

	return ClassUnknown
}
