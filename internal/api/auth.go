package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Dbangs20/focusFLow/internal/auth"
	"github.com/Dbangs20/focusFLow/internal/db"
	"github.com/Dbangs20/focusFLow/internal/logging"
)

// Magic-link login. The requesting device polls check-status with its
// token; the link in the email approves the token from any device,
// and the next poll exchanges it for a session cookie.

func (s *Server) handleMagicLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		writeError(w, http.StatusBadRequest, "valid email required")
		return
	}

	token, err := db.CreateMagicToken(email)
	if err != nil {
		logging.Logger.Error("create magic token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	link := fmt.Sprintf("%s/auth/verify?token=%s", s.baseURL, url.QueryEscape(token))
	sent, err := s.mailer.Send(
		email,
		"Your FocusFlow sign-in link",
		fmt.Sprintf("Open this link to sign in: %s\n\nIt expires in 15 minutes.", link),
		fmt.Sprintf(`<p><a href="%s">Sign in to FocusFlow</a></p><p>The link expires in 15 minutes.</p>`, link),
	)
	if err != nil {
		logging.Logger.Warn("magic link email failed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "emailSent": sent})
}

func (s *Server) handleCheckStatus(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token required")
		return
	}

	status, email, err := db.CheckMagicTokenStatus(token)
	if err != nil {
		writeError(w, http.StatusNotFound, "token not found")
		return
	}
	if status != "approved" {
		writeJSON(w, http.StatusOK, map[string]string{"status": status})
		return
	}

	user, err := db.GetOrCreateUser(email, "")
	if err != nil {
		logging.Logger.Error("get or create user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	sessionToken, err := db.CreateAuthSession(user.ID)
	if err != nil {
		logging.Logger.Error("create auth session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := db.MarkMagicTokenUsed(token); err != nil {
		logging.Logger.Warn("mark token used failed", "error", err)
	}

	auth.SetSessionCookie(w, sessionToken)
	writeJSON(w, http.StatusOK, map[string]any{"status": "approved", "user": user})
}

// handleVerify is what the emailed link opens: it reports which email
// the pending token belongs to, so the approving page can confirm.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token required")
		return
	}
	email, err := db.ValidateMagicToken(token)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token required")
		return
	}

	if _, err := db.ApproveMagicToken(req.Token); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"approved": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.Logout(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"loggedOut": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user *db.User) {
	writeJSON(w, http.StatusOK, user)
}
