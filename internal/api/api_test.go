package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dbangs20/focusFLow/internal/db"
	"github.com/Dbangs20/focusFLow/internal/focus"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) Send(to, subject, text, html string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return true, nil
}

func newTestMux(t *testing.T) (*http.ServeMux, *fakeClock, *fakeMailer) {
	t.Helper()
	require.NoError(t, db.Init(t.TempDir()))
	t.Cleanup(db.Close)

	clk := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	mailer := &fakeMailer{}
	svc := focus.NewService(clk, mailer, "http://localhost:8080")

	mux := http.NewServeMux()
	NewServer(svc, mailer, "http://localhost:8080").RegisterRoutes(mux)
	return mux, clk, mailer
}

// loginAs mints a user and a session cookie directly, skipping the
// magic-link round trip.
func loginAs(t *testing.T, email string) (*db.User, *http.Cookie) {
	t.Helper()
	user, err := db.GetOrCreateUser(email, "")
	require.NoError(t, err)
	token, err := db.CreateAuthSession(user.ID)
	require.NoError(t, err)
	return user, &http.Cookie{Name: "focusflow_session", Value: token}
}

func do(mux *http.ServeMux, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestEndpointsRequireAuth(t *testing.T) {
	mux, _, _ := newTestMux(t)

	for _, route := range []struct{ method, path string }{
		{"GET", "/sessions"},
		{"POST", "/sessions"},
		{"POST", "/sessions/x/break/start"},
		{"POST", "/activity"},
		{"GET", "/focus-state"},
		{"GET", "/gamification"},
	} {
		w := do(mux, route.method, route.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestSessionFlowOverHTTP(t *testing.T) {
	mux, _, _ := newTestMux(t)
	_, cookie := loginAs(t, "alice@example.com")

	w := do(mux, "POST", "/sessions", map[string]any{"name": "sprint", "durationMinutes": 90}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	session := created["session"].(map[string]any)
	sessionID := session["id"].(string)
	require.NotEmpty(t, sessionID)

	w = do(mux, "POST", "/sessions/"+sessionID+"/join", map[string]any{"goal": "write tests"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["joined"])

	w = do(mux, "GET", "/sessions/"+sessionID, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)
	assert.Equal(t, true, view["isAdmin"])
	assert.NotNil(t, view["currentUserEntry"])

	w = do(mux, "GET", "/sessions", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	sessions := decode(t, w)["sessions"].([]any)
	assert.Len(t, sessions, 1)

	w = do(mux, "POST", "/sessions/"+sessionID+"/end", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["ended"])

	w = do(mux, "DELETE", "/sessions?sessionId="+sessionID, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	hidden := decode(t, w)
	assert.Equal(t, sessionID, hidden["deleted"])
	assert.Equal(t, "current-user", hidden["scope"])
}

func TestCreateSessionValidationOverHTTP(t *testing.T) {
	mux, _, _ := newTestMux(t)
	_, cookie := loginAs(t, "alice@example.com")

	w := do(mux, "POST", "/sessions", map[string]any{"name": "", "durationMinutes": 90}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])

	w = do(mux, "POST", "/sessions", map[string]any{"name": "x", "durationMinutes": 500}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBreakLockedResponseCarriesCountdown(t *testing.T) {
	mux, _, _ := newTestMux(t)
	_, cookie := loginAs(t, "alice@example.com")

	w := do(mux, "POST", "/sessions", map[string]any{"name": "long haul", "durationMinutes": 200}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := decode(t, w)["session"].(map[string]any)["id"].(string)

	w = do(mux, "POST", "/sessions/"+sessionID+"/join", map[string]any{"goal": "focus"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(mux, "POST", "/sessions/"+sessionID+"/break/start", map[string]any{"durationMinutes": 30}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["error"])
	assert.InDelta(t, 3600, body["unlockInSeconds"], 1)
}

func TestBreakFlowOverHTTP(t *testing.T) {
	mux, clk, _ := newTestMux(t)
	_, cookie := loginAs(t, "alice@example.com")

	w := do(mux, "POST", "/sessions", map[string]any{"name": "long haul", "durationMinutes": 200}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := decode(t, w)["session"].(map[string]any)["id"].(string)
	w = do(mux, "POST", "/sessions/"+sessionID+"/join", map[string]any{"goal": "focus"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	clk.Advance(61 * time.Minute)

	w = do(mux, "POST", "/sessions/"+sessionID+"/break/start", map[string]any{"durationMinutes": 10}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	started := decode(t, w)
	assert.Equal(t, true, started["started"])
	assert.EqualValues(t, 10, started["durationMinutes"])

	w = do(mux, "POST", "/sessions/"+sessionID+"/break/extend", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	extended := decode(t, w)
	assert.Equal(t, true, extended["extended"])
	assert.EqualValues(t, 5, extended["extensionMinutes"])

	clk.Advance(20 * time.Minute)

	w = do(mux, "POST", "/sessions/"+sessionID+"/break/return", map[string]any{}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code, "overdue return needs a recovery action")

	w = do(mux, "POST", "/sessions/"+sessionID+"/break/return", map[string]any{"recoveryAction": "back to it"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	returned := decode(t, w)
	assert.Equal(t, true, returned["returned"])
	assert.Equal(t, true, returned["recoveryApplied"])

	w = do(mux, "POST", "/sessions/"+sessionID+"/break/escalate", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	escalated := decode(t, w)
	assert.Equal(t, false, escalated["escalated"])
	assert.Equal(t, "break_not_active", escalated["reason"])
}

func TestActivityAndStateEndpoints(t *testing.T) {
	mux, _, _ := newTestMux(t)
	_, cookie := loginAs(t, "alice@example.com")

	w := do(mux, "POST", "/activity", map[string]any{"type": "activity"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 81, decode(t, w)["focusScore"])

	w = do(mux, "GET", "/focus-state", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode(t, w)
	assert.EqualValues(t, 81, state["focusScore"])
	assert.EqualValues(t, 100, state["reliabilityScore"])
	assert.Equal(t, "stable", state["trend"])

	w = do(mux, "GET", "/gamification", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["totalPoints"])
}

func TestMagicLinkFlow(t *testing.T) {
	mux, _, mailer := newTestMux(t)

	w := do(mux, "POST", "/auth/magic-link", map[string]any{"email": "new@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	token := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, true, body["emailSent"])
	assert.Equal(t, []string{"new@example.com"}, mailer.sent)

	w = do(mux, "GET", "/auth/check-status?token="+token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", decode(t, w)["status"])

	w = do(mux, "GET", "/auth/verify?token="+token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new@example.com", decode(t, w)["email"])

	w = do(mux, "POST", "/auth/verify", map[string]any{"token": token}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["approved"])

	w = do(mux, "GET", "/auth/check-status?token="+token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", decode(t, w)["status"])

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "focusflow_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "approved poll sets the session cookie")

	w = do(mux, "GET", "/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new@example.com", decode(t, w)["email"])

	w = do(mux, "GET", "/auth/check-status?token="+token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "used", decode(t, w)["status"])
}

func TestMagicLinkRejectsBadEmail(t *testing.T) {
	mux, _, _ := newTestMux(t)

	w := do(mux, "POST", "/auth/magic-link", map[string]any{"email": "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
