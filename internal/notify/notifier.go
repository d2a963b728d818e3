// Package notify delivers user-facing notifications.
package notify

import (
	"context"
)

//go:generate mockgen -destination=mock/mock_notifier.go -package=notifymock github.com/KirkDiggler/rpg-item-parser/internal/notify Notifier

// Options controls how a notification is shown
type Options struct {
	// Persistent notifications stay until the user dismisses them
	Persistent bool
}

// Notifier is the notification surface
type Notifier interface {
	// NotifyError shows an error with a title and an HTML body
	NotifyError(ctx context.Context, title, htmlBody string, opts *Options) error
}
