package api

import (
	"encoding/json"
	"net/http"

	"github.com/Dbangs20/focusFLow/internal/db"
)

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request, user *db.User) {
	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Type == "" {
		req.Type = "activity"
	}

	result, err := s.svc.RecordActivity(user.ID, req.Type)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFocusState(w http.ResponseWriter, r *http.Request, user *db.User) {
	state, err := s.svc.FocusState(user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleGamification(w http.ResponseWriter, r *http.Request, user *db.User) {
	g, err := s.svc.Gamification(user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
