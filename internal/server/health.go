package server

import (
	"context"
	"net/http"
	"time"

	"indian-meal-log/internal/config"
)

const serviceName = "meal-log"

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Message   string `json:"message,omitempty"`
}

func newHealthResponse(status string) healthResponse {
	return healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}
}

func (s *MealLogServer) handleHealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newHealthResponse("ok"))
}

// handleHealthReady pings the meal store.
func (s *MealLogServer) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s.store == nil {
		resp := newHealthResponse("fail")
		resp.Message = "store not initialized"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	if err := s.store.Ping(ctx); err != nil {
		resp := newHealthResponse("fail")
		resp.Message = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, newHealthResponse("ok"))
}
