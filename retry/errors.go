package retry

import (
	"errors"
	"net"
	"strings"

	"github.com/spetersoncode/janus"
)

// statusCoder is satisfied by the provider SDK error types, which all
// expose the HTTP status of the failed request.
type statusCoder interface {
	StatusCode() int
}

// IsTransient reports whether the error is worth retrying. Categorized
// errors are authoritative; for raw provider and network errors the HTTP
// status code, timeout flag, and a set of known message patterns decide.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var cerr janus.CategorizedError
	if errors.As(err, &cerr) && cerr.Category() != "" {
		return cerr.Retryable()
	}

	var api statusCoder
	if errors.As(err, &api) {
		return isTransientStatusCode(api.StatusCode())
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}

	return hasTransientPattern(err.Error())
}

// isTransientStatusCode reports whether an HTTP status indicates a
// temporary condition.
func isTransientStatusCode(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// transientPatterns are substrings of error messages from SDKs that wrap
// their transport errors in plain strings.
var transientPatterns = []string{
	"connection reset",
	"connection refused",
	"broken pipe",
	"timeout",
	"temporary failure",
	"temporarily unavailable",
	"rate limit",
	"too many requests",
	"service unavailable",
	"bad gateway",
	"overloaded",
	"error 429",
	"error 500",
	"error 502",
	"error 503",
	"error 504",
}

func hasTransientPattern(msg string) bool {
	msg = strings.ToLower(msg)
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
