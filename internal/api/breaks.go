package api

import (
	"encoding/json"
	"net/http"

	"github.com/Dbangs20/focusFLow/internal/db"
	"github.com/Dbangs20/focusFLow/internal/focus"
)

func (s *Server) handleBreakStart(w http.ResponseWriter, r *http.Request, user *db.User) {
	var req struct {
		DurationMinutes int `json:"durationMinutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.svc.StartBreak(user.ID, r.PathValue("id"), req.DurationMinutes); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"started":         true,
		"durationMinutes": req.DurationMinutes,
	})
}

func (s *Server) handleBreakExtend(w http.ResponseWriter, r *http.Request, user *db.User) {
	if err := s.svc.ExtendBreak(user.ID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"extended":         true,
		"extensionMinutes": focus.ExtensionMinutes,
	})
}

func (s *Server) handleBreakReturn(w http.ResponseWriter, r *http.Request, user *db.User) {
	var req struct {
		RecoveryAction string `json:"recoveryAction"`
	}
	// Body is optional on a clean return.
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := s.svc.ReturnFromBreak(user.ID, r.PathValue("id"), req.RecoveryAction)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBreakEscalate(w http.ResponseWriter, r *http.Request, user *db.User) {
	result, err := s.svc.Escalate(user, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
