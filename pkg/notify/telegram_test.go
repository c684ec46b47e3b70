package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSender_Send(t *testing.T) {
	var path string
	var form url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewTelegramSender(TelegramConfig{BotToken: "123:abc", ChatID: "42"})
	s.apiBase = server.URL

	ev := Event{Kind: EventLoginFailure, Detail: "bad credentials", Timestamp: time.Now()}
	require.NoError(t, s.Send(context.Background(), ev))

	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "42", form.Get("chat_id"))
	assert.Contains(t, form.Get("text"), "Portal Login Failed")
	assert.Contains(t, form.Get("text"), "bad credentials")
}

func TestTelegramSender_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	s := NewTelegramSender(TelegramConfig{BotToken: "bad", ChatID: "42"})
	s.apiBase = server.URL

	err := s.Send(context.Background(), Event{Kind: EventHeartbeat, Timestamp: time.Now()})
	assert.Error(t, err)
}
