package notify

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
)

var (
	blockTagRegex = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/summary|/details|/h[1-6])\s*/?>`)
	listItemRegex = regexp.MustCompile(`(?i)<\s*li[^>]*>`)
	anyTagRegex   = regexp.MustCompile(`<[^>]*>`)
	blankRunRegex = regexp.MustCompile(`\n{3,}`)
)

// ConsoleConfig configures a Console notifier
type ConsoleConfig struct {
	// Writer defaults to os.Stderr
	Writer io.Writer
}

// Console renders notifications as plain text
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a Console notifier
func NewConsole(cfg *ConsoleConfig) *Console {
	w := io.Writer(os.Stderr)
	if cfg != nil && cfg.Writer != nil {
		w = cfg.Writer
	}
	return &Console{w: w}
}

// NotifyError writes the notification to the console
func (c *Console) NotifyError(_ context.Context, title, htmlBody string, opts *Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	marker := "!"
	if opts != nil && opts.Persistent {
		marker = "!!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", marker, title)
	if body := PlainText(htmlBody); body != "" {
		for _, line := range strings.Split(body, "\n") {
			b.WriteString("   ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if _, err := io.WriteString(c.w, b.String()); err != nil {
		return errors.Wrap(err, "failed to write notification")
	}
	return nil
}

// PlainText turns the small HTML subset used in notifications into text
func PlainText(body string) string {
	s := blockTagRegex.ReplaceAllString(body, "\n")
	s = listItemRegex.ReplaceAllString(s, "- ")
	s = anyTagRegex.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankRunRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
