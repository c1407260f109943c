package http

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/agentnews/agentnews"
)

const invalidLinkMessage = "Invalid or expired unsubscribe link."

func (s *Server) unsubscribeHandler(w http.ResponseWriter, r *http.Request) error {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.FormValue("token")
	}

	// Token-based unsubscribe from email links.
	if token != "" {
		return s.handleTokenUnsubscribe(w, r, token)
	}

	// Email-based unsubscribe from the web form.
	if r.Method == http.MethodPost {
		return s.handleEmailUnsubscribe(w, r)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}

// handleTokenUnsubscribe drives the confirmation flow: a read-only request
// renders a confirmation view for a valid token; a confirming submission
// re-validates and deactivates the row in one operation. A token that is no
// longer valid renders the invalid-link message in both cases.
func (s *Server) handleTokenUnsubscribe(w http.ResponseWriter, r *http.Request, token string) error {
	logger := hlog.FromRequest(r)

	if r.Method == http.MethodPost && r.FormValue("confirm") == "yes" {
		email, err := s.SubscriptionService.RemoveByToken(token)
		if err != nil {
			if agentnews.ErrorCode(err) == agentnews.ErrNotFound {
				return s.renderIndex(w, r, &Flash{Category: "error", Message: invalidLinkMessage})
			}
			return err
		}

		logger.Info().Str("email", email).Msg("token unsubscribe successful")
		return s.renderSuccess(w, "unsubscribe")
	}

	sub, err := s.SubscriptionService.FindByToken(token)
	if err != nil {
		return err
	}
	if sub == nil {
		return s.renderIndex(w, r, &Flash{Category: "error", Message: invalidLinkMessage})
	}

	return s.renderConfirm(w, sub.Email, token)
}

func (s *Server) handleEmailUnsubscribe(w http.ResponseWriter, r *http.Request) error {
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	if email == "" || !strings.Contains(email, "@") {
		return s.renderIndex(w, r, &Flash{Category: "error", Message: "Please enter a valid email address."})
	}

	if err := s.SubscriptionService.Remove(email); err != nil {
		if agentnews.ErrorCode(err) == agentnews.ErrNotFound {
			return s.renderIndex(w, r, &Flash{Category: "error", Message: agentnews.ErrorMessage(err)})
		}
		return err
	}

	hlog.FromRequest(r).Info().Str("email", email).Msg("web unsubscribe")
	return s.renderSuccess(w, "unsubscribe")
}
