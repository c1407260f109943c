package agentnews

import (
	"fmt"
	"strings"
	"time"
)

// NewsletterOptions carries the template context for FormatNewsletter.
type NewsletterOptions struct {
	ProductName string
	BaseURL     string
	ReplyTo     string
	// Date overrides the embedded current-date string; the zero value
	// means time.Now().
	Date time.Time
}

// FormatNewsletter renders articles into a plain-text newsletter body:
// a numbered list inside a fixed header/footer. When sub is non-nil the
// footer carries a token-bearing unsubscribe URL, otherwise a generic
// reply-to-unsubscribe instruction. No HTML escaping is performed.
func FormatNewsletter(articles []Article, sub *Subscriber, opts NewsletterOptions) string {
	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Weekly - %s\n", opts.ProductName, date.Format("January 2, 2006"))
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Welcome to this week's %s! Here are the top stories:\n\n", opts.ProductName)

	for i, a := range articles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.Title)
		fmt.Fprintf(&b, "   %s\n", a.Link)
		fmt.Fprintf(&b, "   %s\n\n", a.Summary)
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Thanks for reading %s!\n\n", opts.ProductName)

	if sub != nil {
		fmt.Fprintf(&b, "To unsubscribe, click here: %s/unsubscribe?token=%s\n", strings.TrimSuffix(opts.BaseURL, "/"), sub.Token)
		fmt.Fprintf(&b, "Or reply with \"UNSUBSCRIBE\" to %s\n", opts.ReplyTo)
	} else {
		fmt.Fprintf(&b, "Reply with \"UNSUBSCRIBE\" to %s to stop receiving these emails.\n", opts.ReplyTo)
	}

	fmt.Fprintf(&b, "\nBest regards,\nThe %s Team\n", opts.ProductName)

	return b.String()
}
