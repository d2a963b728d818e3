package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Metadata keys attached to errors returned by completion providers.
const (
	MetaProvider   = "provider"
	MetaStatusCode = "status_code"
	MetaRetryAfter = "retry_after"
	MetaErrorType  = "error_type"
)

// Provider wraps a failed completion call. The code follows the reported HTTP
// status; status 0 means the call never got a response (network failure).
func Provider(provider string, status int, cause error) *Error {
	code := CodeUnavailable
	if status > 0 {
		code = FromHTTPStatus(status)
	}

	msg := fmt.Sprintf("%s request failed", provider)
	if status > 0 {
		msg = fmt.Sprintf("%s request failed with status %d", provider, status)
	}

	err := WrapWithCode(cause, code, msg)
	if err == nil {
		err = New(code, msg)
	}
	err.WithMeta(MetaProvider, provider)
	if status > 0 {
		err.WithMeta(MetaStatusCode, status)
	}
	return err
}

// StatusCode returns the HTTP status recorded on err, or 0 when none is known.
func StatusCode(err error) int {
	meta := GetMeta(err)
	if meta == nil {
		return 0
	}

	switch v := meta[MetaStatusCode].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, convErr := strconv.Atoi(strings.TrimSpace(v))
		if convErr != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// RetryAfter returns the raw retry-after hint recorded on err, if any.
func RetryAfter(err error) (string, bool) {
	meta := GetMeta(err)
	if meta == nil {
		return "", false
	}

	switch v := meta[MetaRetryAfter].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}
