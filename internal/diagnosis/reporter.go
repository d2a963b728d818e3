package diagnosis

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/rpg-item-parser/internal/notify"
)

// ReporterConfig configures a Reporter
type ReporterConfig struct {
	// Notifier is optional; without one diagnoses are only logged
	Notifier notify.Notifier
}

// Reporter shows diagnoses to the user
type Reporter struct {
	notifier notify.Notifier
}

// NewReporter creates a Reporter
func NewReporter(cfg *ReporterConfig) *Reporter {
	r := &Reporter{}
	if cfg != nil {
		r.notifier = cfg.Notifier
	}
	return r
}

// Display logs d and sends a persistent notification. It never fails;
// notifier errors and panics are logged and swallowed.
func (r *Reporter) Display(ctx context.Context, d *Diagnosis, during string) {
	if d == nil {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.ErrorContext(ctx, "Panic while displaying diagnosis", "panic", rec)
		}
	}()

	slog.ErrorContext(ctx, "Item parsing failed",
		"context", during,
		"category", d.Category,
		"status_code", d.StatusCode,
		"retry_after", d.RetryAfter,
		"technical", d.TechnicalMessage)

	if r == nil || r.notifier == nil {
		return
	}

	title := d.Title()
	if during != "" {
		title = fmt.Sprintf("%s: %s", during, title)
	}

	if err := r.notifier.NotifyError(ctx, title, RenderHTML(d), &notify.Options{Persistent: true}); err != nil {
		slog.WarnContext(ctx, "Failed to deliver notification", "error", err)
	}
}

// RenderHTML builds the notification body
func RenderHTML(d *Diagnosis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(d.UserMessage))
	if d.SuggestedAction != "" {
		fmt.Fprintf(&b, "<p><strong>Suggested action:</strong> %s</p>", html.EscapeString(d.SuggestedAction))
	}
	b.WriteString("<details><summary>Technical details</summary>")
	fmt.Fprintf(&b, "<pre>%s</pre>", html.EscapeString(d.TechnicalMessage))
	b.WriteString("</details>")
	return b.String()
}
