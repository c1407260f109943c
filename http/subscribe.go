package http

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"
)

func (s *Server) subscribeHandler(w http.ResponseWriter, r *http.Request) error {
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	if email == "" || !strings.Contains(email, "@") {
		return s.renderIndex(w, r, &Flash{Category: "error", Message: "Please enter a valid email address."})
	}

	logger := hlog.FromRequest(r)

	isNew, err := s.SubscriptionService.Add(email)
	if err != nil {
		return err
	}

	logger.Info().Str("email", email).Bool("new", isNew).Msg("web subscription")

	// The welcome send is best effort: a failure must not fail or roll
	// back the subscription itself.
	if isNew {
		if err := s.NewsletterService.SendWelcomeEmail(email); err != nil {
			logger.Warn().Err(err).Str("email", email).Msg("failed to send welcome email")
		}
	}

	return s.renderSuccess(w, "subscribe")
}
