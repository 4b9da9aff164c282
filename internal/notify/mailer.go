package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"

	"github.com/Dbangs20/focusFLow/internal/config"
)

// Mailer is the outbound notification contract. Send reports whether
// the message was handed to a transport; an unconfigured mailer
// reports false without attempting delivery, and no implementation
// retries. Callers must treat failures as non-fatal.
type Mailer interface {
	Send(to, subject, text, html string) (bool, error)
}

// EmailMailer delivers through the Resend HTTP API, or plain SMTP
// when enabled.
type EmailMailer struct {
	cfg config.EmailConfig
}

func NewEmailMailer(cfg config.EmailConfig) *EmailMailer {
	return &EmailMailer{cfg: cfg}
}

func (m *EmailMailer) Send(to, subject, text, html string) (bool, error) {
	if m.cfg.SMTPEnabled {
		if m.cfg.SMTPHost == "" {
			return false, nil
		}
		if err := m.sendViaSMTP(to, subject, html); err != nil {
			return false, err
		}
		return true, nil
	}
	if m.cfg.ResendAPIKey == "" {
		return false, nil
	}
	if err := m.sendViaResend(to, subject, text, html); err != nil {
		return false, err
	}
	return true, nil
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html"`
}

var resendEndpoint = "https://api.resend.com/emails"

func (m *EmailMailer) sendViaResend(to, subject, text, html string) error {
	body := resendRequest{
		From:    m.cfg.FromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    text,
		HTML:    html,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", resendEndpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.cfg.ResendAPIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}

	return nil
}

func (m *EmailMailer) sendViaSMTP(to, subject, html string) error {
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort

	msg := "From: " + m.cfg.FromEmail + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		html

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.SMTPUser, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
