package http

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/hlog"
)

type appHandler func(w http.ResponseWriter, r *http.Request) error

// Error converts an unhandled handler error into a flash message on the
// main page instead of a fault page. Validation failures never reach here;
// handlers render those themselves.
func (s *Server) Error(fn appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		hlog.FromRequest(r).Error().Msg(err.Error())
		sentry.CaptureException(err)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_ = mainTmpl.Execute(w, indexData{
			Product: s.Product,
			Flash:   &Flash{Category: "error", Message: "Service temporarily unavailable. Please try again later."},
		})
	}
}
