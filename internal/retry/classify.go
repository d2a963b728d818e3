package retry

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
)

var retryableStatus = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

var retryablePhrases = []string{
	"rate limit",
	"rate_limit",
	"ratelimit",
	"quota",
	"too many requests",
	"timeout",
	"timed out",
	"connection reset",
	"connection refused",
	"econnreset",
	"econnrefused",
	"etimedout",
	"socket hang up",
	"eof",
}

// IsRetryable reports whether err is worth another attempt. Cancellation and
// deadline errors from the caller's context never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if status := errors.StatusCode(err); status > 0 {
		return retryableStatus[status]
	}

	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) ||
		stderrors.Is(err, syscall.ECONNRESET) || stderrors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
