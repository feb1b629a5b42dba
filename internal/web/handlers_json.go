package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	last := s.cycles.LastCycle()
	if last == nil {
		http.Error(w, "No cycle finished yet", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, last)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.journal.ListOrders(r.Context(), parseLimit(r))
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		http.Error(w, "Failed to list orders", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, orders)
}

func (s *Server) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := s.journal.ListDecisions(r.Context(), parseLimit(r))
	if err != nil {
		s.logger.Error("Failed to list decisions", zap.Error(err))
		http.Error(w, "Failed to list decisions", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, decisions)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.journal.ListReports(r.Context(), parseLimit(r))
	if err != nil {
		s.logger.Error("Failed to list reports", zap.Error(err))
		http.Error(w, "Failed to list reports", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, reports)
}
