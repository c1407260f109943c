package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"
)

type healthResponse struct {
	Status      string `json:"status"`
	Subscribers int    `json:"subscribers,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	count, err := s.SubscriptionService.CountActive()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("health check failed")
		writeJSONResponse(w, http.StatusInternalServerError, healthResponse{
			Status: "unhealthy",
			Error:  "database connection failed",
		})
		return
	}

	writeJSONResponse(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Subscribers: count,
	})
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(response)
}
