package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dbangs20/focusFLow/internal/config"
)

func TestSendUnconfiguredReportsNotSent(t *testing.T) {
	m := NewEmailMailer(config.EmailConfig{FromEmail: "FocusFlow <noreply@example.com>"})

	sent, err := m.Send("user@example.com", "subject", "text", "<p>html</p>")
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestSendViaResend(t *testing.T) {
	var got resendRequest
	var authHeader string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	orig := resendEndpoint
	resendEndpoint = ts.URL
	t.Cleanup(func() { resendEndpoint = orig })

	m := NewEmailMailer(config.EmailConfig{
		FromEmail:    "FocusFlow <noreply@example.com>",
		ResendAPIKey: "re_test_key",
	})

	sent, err := m.Send("user@example.com", "Break over", "plain", "<p>rich</p>")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, "Bearer re_test_key", authHeader)
	assert.Equal(t, []string{"user@example.com"}, got.To)
	assert.Equal(t, "Break over", got.Subject)
	assert.Equal(t, "plain", got.Text)
	assert.Equal(t, "<p>rich</p>", got.HTML)
}

func TestSendViaResendAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	orig := resendEndpoint
	resendEndpoint = ts.URL
	t.Cleanup(func() { resendEndpoint = orig })

	m := NewEmailMailer(config.EmailConfig{
		FromEmail:    "FocusFlow <noreply@example.com>",
		ResendAPIKey: "re_test_key",
	})

	sent, err := m.Send("user@example.com", "subject", "text", "<p>html</p>")
	assert.Error(t, err)
	assert.False(t, sent)
}

func TestSendSMTPWithoutHostReportsNotSent(t *testing.T) {
	m := NewEmailMailer(config.EmailConfig{SMTPEnabled: true})

	sent, err := m.Send("user@example.com", "subject", "text", "<p>html</p>")
	require.NoError(t, err)
	assert.False(t, sent)
}
