package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dbangs20/focusFLow/internal/auth"
	"github.com/Dbangs20/focusFLow/internal/db"
	"github.com/Dbangs20/focusFLow/internal/focus"
	"github.com/Dbangs20/focusFLow/internal/logging"
	"github.com/Dbangs20/focusFLow/internal/notify"
)

// Server holds the handler dependencies. Handlers stay thin: decode,
// call the focus service, encode.
type Server struct {
	svc     *focus.Service
	mailer  notify.Mailer
	baseURL string
}

func NewServer(svc *focus.Service, mailer notify.Mailer, baseURL string) *Server {
	return &Server{svc: svc, mailer: mailer, baseURL: baseURL}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("POST /auth/magic-link", s.handleMagicLink)
	mux.HandleFunc("GET /auth/check-status", s.handleCheckStatus)
	mux.HandleFunc("GET /auth/verify", s.handleVerify)
	mux.HandleFunc("POST /auth/verify", s.handleApprove)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("GET /auth/me", s.requireAuth(s.handleMe))

	// Sessions
	mux.HandleFunc("POST /sessions", s.requireAuth(s.handleCreateSession))
	mux.HandleFunc("GET /sessions", s.requireAuth(s.handleListSessions))
	mux.HandleFunc("DELETE /sessions", s.requireAuth(s.handleHideSession))
	mux.HandleFunc("GET /sessions/{id}", s.requireAuth(s.handleViewSession))
	mux.HandleFunc("POST /sessions/{id}/join", s.requireAuth(s.handleJoinSession))
	mux.HandleFunc("POST /sessions/{id}/end", s.requireAuth(s.handleEndSession))
	mux.HandleFunc("POST /sessions/{id}/recap", s.requireAuth(s.handleRecap))

	// Legacy body-addressed aliases
	mux.HandleFunc("POST /sessions/join", s.requireAuth(s.handleLegacyJoin))
	mux.HandleFunc("POST /sessions/recap", s.requireAuth(s.handleLegacyRecap))

	// Breaks
	mux.HandleFunc("POST /sessions/{id}/break/start", s.requireAuth(s.handleBreakStart))
	mux.HandleFunc("POST /sessions/{id}/break/extend", s.requireAuth(s.handleBreakExtend))
	mux.HandleFunc("POST /sessions/{id}/break/return", s.requireAuth(s.handleBreakReturn))
	mux.HandleFunc("POST /sessions/{id}/break/escalate", s.requireAuth(s.handleBreakEscalate))

	// Scoring and gamification
	mux.HandleFunc("POST /activity", s.requireAuth(s.handleActivity))
	mux.HandleFunc("GET /focus-state", s.requireAuth(s.handleFocusState))
	mux.HandleFunc("GET /gamification", s.requireAuth(s.handleGamification))

	// Groups
	mux.HandleFunc("POST /groups/join", s.requireAuth(s.handleJoinGroup))
}

// requireAuth resolves the session cookie and rejects anonymous
// requests uniformly with 401.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, *db.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.CurrentUser(r)
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next(w, r, user)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the focus error taxonomy onto HTTP statuses.
// Unknown errors are logged and masked as 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var locked *focus.BreakLockedError
	if errors.As(err, &locked) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":           locked.Error(),
			"unlockInSeconds": locked.UnlockInSeconds,
		})
		return
	}

	switch {
	case errors.Is(err, focus.ErrValidation), errors.Is(err, focus.ErrInvalidState):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, focus.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, focus.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, focus.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, focus.ErrUpstream):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logging.Logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
