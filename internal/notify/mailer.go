package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultMailEndpoint = "https://api.postmarkapp.com/email"

// Mailer delivers rendered messages through the Postmark HTTP API.
type Mailer struct {
	endpoint   string
	token      string
	from       string
	httpClient *http.Client
}

func NewMailer(token, from string) *Mailer {
	return &Mailer{
		endpoint: defaultMailEndpoint,
		token:    token,
		from:     from,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewMailerWithEndpoint points the mailer at a custom endpoint, used by
// tests with an httptest server.
func NewMailerWithEndpoint(endpoint, token, from string) *Mailer {
	m := NewMailer(token, from)
	m.endpoint = endpoint
	return m
}

type sendRequest struct {
	From          string `json:"From"`
	To            string `json:"To"`
	Subject       string `json:"Subject"`
	HTMLBody      string `json:"HtmlBody"`
	TextBody      string `json:"TextBody"`
	MessageStream string `json:"MessageStream"`
}

type sendResponse struct {
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
}

// Send delivers one message. Delivery errors are returned to the caller so
// the surrounding workflow can retry.
func (m *Mailer) Send(ctx context.Context, to string, msg Message) error {
	if m.token == "" {
		return fmt.Errorf("MAIL_API_TOKEN not configured")
	}

	body, err := json.Marshal(sendRequest{
		From:          m.from,
		To:            to,
		Subject:       msg.Subject,
		HTMLBody:      msg.HTMLBody,
		TextBody:      msg.TextBody,
		MessageStream: "outbound",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", m.token)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail API returned %d: %s", resp.StatusCode, string(raw))
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode mail response: %w", err)
	}
	if result.ErrorCode != 0 {
		return fmt.Errorf("mail API error %d: %s", result.ErrorCode, result.Message)
	}
	return nil
}
