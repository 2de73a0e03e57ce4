package run

import (
	"net/http"
	"time"

	"github.com/fwojciec/harvest"
)

// DefaultRetryDelays returns the backoff delays between fetch attempts:
// 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Retryable reports whether a fetch error is worth retrying on the same
// tier. Transport failures and transient statuses (408, 425, 429, 5xx)
// are; everything else, including bot blocks on otherwise healthy
// statuses, is not.
func Retryable(err error) bool {
	if harvest.ErrorCode(err) != harvest.EFETCH {
		return false
	}
	status := harvest.ErrorStatus(err)
	switch {
	case status == 0:
		return true
	case status == http.StatusRequestTimeout,
		status == http.StatusTooEarly,
		status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	}
	return false
}

// permanentStatus reports whether a status is a definitive answer that a
// different fetch tier cannot change. 403 is absent: bot walls routinely
// hide behind it, and a rendering tier may get through.
func permanentStatus(status int) bool {
	switch status {
	case http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusNotFound,
		http.StatusMethodNotAllowed,
		http.StatusGone:
		return true
	}
	return false
}
