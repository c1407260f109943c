package agentnews

// NewsletterService is the interface that wraps composing and sending
// newsletter email.
type NewsletterService interface {
	// SendNewsletter formats and sends one personalized email per active
	// subscriber. It returns an error only when a precondition fails (no
	// articles, no active subscribers, or the subscriber listing itself
	// failed); individual send failures are recorded in the report and
	// the loop continues.
	SendNewsletter(articles []Article) (*SendReport, error)

	// SendWelcomeEmail sends a one-time welcome message to a newly
	// subscribed address, using freshly fetched articles when available.
	SendWelcomeEmail(to string) error
}

// SendReport records the per-recipient outcome of a newsletter dispatch.
type SendReport struct {
	Sent   []string
	Failed map[string]error
}

// NewSendReport returns an empty report.
func NewSendReport() *SendReport {
	return &SendReport{Failed: make(map[string]error)}
}
