package auth

import (
	"net/http"

	"github.com/Dbangs20/focusFLow/internal/db"
)

const sessionCookie = "focusflow_session"

// CurrentUser resolves the viewer from the session cookie. Identity
// itself is issued by the magic-link flow; everything else in the app
// only ever asks "who is calling".
func CurrentUser(r *http.Request) *db.User {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	user, err := db.GetUserByAuthSession(cookie.Value)
	if err != nil {
		return nil
	}
	return user
}

func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err == nil {
		db.DeleteAuthSession(cookie.Value)
	}
	ClearSessionCookie(w)
}
