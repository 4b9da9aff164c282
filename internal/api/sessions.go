package api

import (
	"encoding/json"
	"net/http"

	"github.com/Dbangs20/focusFLow/internal/db"
	"github.com/Dbangs20/focusFLow/internal/focus"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request, user *db.User) {
	var req struct {
		Name            string `json:"name"`
		TeamSessionID   string `json:"teamSessionId"`
		DurationMinutes int    `json:"durationMinutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	session, err := s.svc.CreateSession(user, focus.CreateSessionInput{
		Name:            req.Name,
		TeamSessionID:   req.TeamSessionID,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"session": session})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request, user *db.User) {
	sessions, err := s.svc.ListSessions(user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []db.SessionSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleHideSession(w http.ResponseWriter, r *http.Request, user *db.User) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId required")
		return
	}
	if err := s.svc.HideSession(user.ID, sessionID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": sessionID, "scope": "current-user"})
}

func (s *Server) handleViewSession(w http.ResponseWriter, r *http.Request, user *db.User) {
	view, err := s.svc.View(user, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request, user *db.User) {
	var req struct {
		Goal          string `json:"goal"`
		TeamSessionID string `json:"teamSessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err := s.svc.Join(user, r.PathValue("id"), focus.JoinInput{
		Goal:          req.Goal,
		TeamSessionID: req.TeamSessionID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"joined": true})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request, user *db.User) {
	if err := s.svc.End(user.ID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ended": true})
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request, user *db.User) {
	var req struct {
		Recap string `json:"recap"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.svc.SubmitRecap(user.ID, r.PathValue("id"), req.Recap); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true})
}

// Legacy aliases address the session in the body instead of the path.

func (s *Server) handleLegacyJoin(w http.ResponseWriter, r *http.Request, user *db.User) {
	var req struct {
		SessionID     string `json:"sessionId"`
		Goal          string `json:"goal"`
		TeamSessionID string `json:"teamSessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId required")
		return
	}

	err := s.svc.Join(user, req.SessionID, focus.JoinInput{
		Goal:          req.Goal,
		TeamSessionID: req.TeamSessionID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"joined": true})
}

func (s *Server) handleLegacyRecap(w http.ResponseWriter, r *http.Request, user *db.User) {
	var req struct {
		SessionID string `json:"sessionId"`
		Recap     string `json:"recap"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.svc.SubmitLegacyRecap(user.ID, req.SessionID, req.Recap); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true})
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request, user *db.User) {
	var req struct {
		GroupName string `json:"groupName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result, err := s.svc.JoinGroup(user.ID, req.GroupName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
