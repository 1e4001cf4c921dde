package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dgallion1/reportcsv/internal/extract"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"stored_conversions": s.orchestrator.StoredJobs(),
		"stats":              s.orchestrator.Stats().Snapshot(),
	})
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"fields":         extract.Fields(),
		"trigger_fields": extract.TriggerFields(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hist := s.orchestrator.History()
	if hist == nil {
		jsonError(w, "history disabled", http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := hist.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("history query failed", "error", err)
		jsonError(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"conversions": entries})
}
