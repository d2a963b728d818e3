// Package diagnosis turns completion failures into user-facing explanations.
package diagnosis

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/shape"
)

// Category groups failures by what the user can do about them
type Category string

// Categories in match order
const (
	CategoryParse     Category = "parse"
	CategoryQuota     Category = "quota"
	CategoryRateLimit Category = "rate_limit"
	CategoryHTTP      Category = "http"
	CategoryCanceled  Category = "canceled"
	CategoryUnknown   Category = "unknown"

	// CategoryStorage is never matched by Analyze; see Storage
	CategoryStorage Category = "storage"
)

// Diagnosis is the classified view of a failure
type Diagnosis struct {
	Category         Category      `json:"category"`
	IsQuotaError     bool          `json:"is_quota_error"`
	IsRateLimitError bool          `json:"is_rate_limit_error"`
	StatusCode       int           `json:"status_code,omitempty"`
	UserMessage      string        `json:"user_message"`
	TechnicalMessage string        `json:"technical_message"`
	SuggestedAction  string        `json:"suggested_action"`
	RetryAfter       time.Duration `json:"retry_after,omitempty"`
}

// Title is a short headline for the diagnosis
func (d *Diagnosis) Title() string {
	switch d.Category {
	case CategoryParse:
		return "Could not read the model's answer"
	case CategoryQuota:
		return "API quota exceeded"
	case CategoryRateLimit:
		return "Rate limit reached"
	case CategoryHTTP:
		return fmt.Sprintf("Provider error (%d)", d.StatusCode)
	case CategoryCanceled:
		return "Request canceled"
	case CategoryStorage:
		return "Could not store the item"
	default:
		return "Item parsing failed"
	}
}

var quotaMarkers = []string{
	"insufficient_quota",
	"billing_hard_limit_reached",
	"credit balance is too low",
}

var rateLimitMarkers = []string{
	"rate limit",
	"rate_limit",
	"ratelimit",
	"too many requests",
	"429",
}

// Analyze classifies err. The first matching rule wins: malformed response,
// quota, rate limit, HTTP status, then unknown.
func Analyze(err error) *Diagnosis {
	if err == nil {
		return nil
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	status := errors.StatusCode(err)
	errType := ""
	if meta := errors.GetMeta(err); meta != nil {
		if v, ok := meta[errors.MetaErrorType].(string); ok {
			errType = strings.ToLower(v)
		}
	}

	d := &Diagnosis{
		StatusCode:       status,
		TechnicalMessage: msg,
	}

	switch {
	case shape.IsValidationError(err):
		d.Category = CategoryParse
		d.UserMessage = "The model answered, but not in the expected format."
		d.SuggestedAction = "Try again, or switch to a smaller parsing mode such as SMALL_SCHEMA_IN_CHUNKS."

	case isQuota(lower, errType):
		d.Category = CategoryQuota
		d.IsQuotaError = true
		d.UserMessage = "Your API account has run out of quota."
		d.SuggestedAction = "Check the plan and billing details for your API key, then try again."

	case status == 429 || containsAny(lower, rateLimitMarkers) || errType == "rate_limit_error":
		d.Category = CategoryRateLimit
		d.IsRateLimitError = true
		d.RetryAfter = retryAfter(err)
		d.UserMessage = "The provider is rate limiting requests."
		d.SuggestedAction = "Wait a moment before parsing more items, or lower rate_limit.requests_per_minute."
		if d.RetryAfter > 0 {
			d.SuggestedAction = fmt.Sprintf("Wait %s before trying again, or lower rate_limit.requests_per_minute.", d.RetryAfter)
		}

	case status >= 400:
		d.Category = CategoryHTTP
		d.UserMessage, d.SuggestedAction = httpMessage(status)

	case stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded):
		d.Category = CategoryCanceled
		d.UserMessage = "The request was canceled before the provider answered."
		d.SuggestedAction = "Run the command again, or raise provider.timeout if it keeps timing out."

	default:
		d.Category = CategoryUnknown
		d.UserMessage = "Something went wrong while talking to the provider."
		d.SuggestedAction = "Check your network connection and that your API key is set, then try again."
	}

	return d
}

// Storage explains a failure to save an item that parsed fine
func Storage(err error) *Diagnosis {
	if err == nil {
		return nil
	}
	return &Diagnosis{
		Category:         CategoryStorage,
		TechnicalMessage: err.Error(),
		UserMessage:      "The item was parsed but could not be saved.",
		SuggestedAction:  "Check that redis is reachable at redis.addr, or parse again without --persist.",
	}
}

func isQuota(lower, errType string) bool {
	if errType == "insufficient_quota" {
		return true
	}
	if strings.Contains(lower, "quota") && strings.Contains(lower, "exceeded") {
		return true
	}
	return containsAny(lower, quotaMarkers)
}

func httpMessage(status int) (string, string) {
	switch {
	case status == 401:
		return "The provider rejected the API key.",
			"Check the key with `itemparser credential validate` and set a new one if needed."
	case status == 403:
		return "The API key is not allowed to use this model.",
			"Check the permission scope of the key or pick a model the key can access."
	case status == 404:
		return "The requested model or endpoint does not exist.",
			"Check provider.model and provider.base_url in the configuration."
	case status >= 500:
		return "The provider is having trouble right now.",
			"This is usually temporary. Try again in a few minutes."
	default:
		return fmt.Sprintf("The provider rejected the request with status %d.", status),
			"Check the configuration and the input text, then try again."
	}
}

// retryAfter reads a retry-after hint in seconds
func retryAfter(err error) time.Duration {
	raw, ok := errors.RetryAfter(err)
	if !ok {
		return 0
	}
	secs, convErr := strconv.ParseFloat(raw, 64)
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
