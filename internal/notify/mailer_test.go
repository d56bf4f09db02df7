package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailerSendsPostmarkRequest(t *testing.T) {
	var got sendRequest
	var token string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get("X-Postmark-Server-Token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ErrorCode":0,"Message":"OK"}`))
	}))
	defer server.Close()

	m := NewMailerWithEndpoint(server.URL, "secret-token", "noreply@talent.example.com")
	err := m.Send(context.Background(), "ada@example.com", Message{
		Subject:  "Hello",
		HTMLBody: "<p>Hi</p>",
		TextBody: "Hi",
	})
	require.NoError(t, err)

	assert.Equal(t, "secret-token", token)
	assert.Equal(t, "noreply@talent.example.com", got.From)
	assert.Equal(t, "ada@example.com", got.To)
	assert.Equal(t, "Hello", got.Subject)
	assert.Equal(t, "outbound", got.MessageStream)
}

func TestMailerSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email"}`))
	}))
	defer server.Close()

	m := NewMailerWithEndpoint(server.URL, "secret-token", "noreply@talent.example.com")
	err := m.Send(context.Background(), "bad", Message{Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email")
}

func TestMailerRequiresToken(t *testing.T) {
	m := NewMailer("", "noreply@talent.example.com")
	err := m.Send(context.Background(), "a@b.c", Message{})
	assert.Error(t, err)
}
