package focus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dbangs20/focusFLow/internal/db"
)

// fakeClock is a manually advanced clock so temporal rules are exact.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
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

type sentMail struct {
	To      string
	Subject string
}

// fakeMailer records sends instead of delivering.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(to, subject, text, html string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return true, nil
}

func (m *fakeMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func newTestService(t *testing.T) (*Service, *fakeClock, *fakeMailer) {
	t.Helper()
	require.NoError(t, db.Init(t.TempDir()))
	t.Cleanup(db.Close)

	clk := newFakeClock()
	mailer := &fakeMailer{}
	return NewService(clk, mailer, "http://localhost:8080"), clk, mailer
}

func seedUser(t *testing.T, email string) *db.User {
	t.Helper()
	user, err := db.GetOrCreateUser(email, "")
	require.NoError(t, err)
	return user
}

// createJoinedSession creates a session of the given length and joins
// the user, which starts the shared clock and makes them admin.
func createJoinedSession(t *testing.T, svc *Service, user *db.User, minutes int) string {
	t.Helper()
	session, err := svc.CreateSession(user, CreateSessionInput{Name: "deep work", DurationMinutes: minutes})
	require.NoError(t, err)
	require.NoError(t, svc.Join(user, session.ID, JoinInput{Goal: "ship the thing"}))
	return session.ID
}
