package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upm-go/upm/pkg/model"
	"github.com/upm-go/upm/pkg/notify"
)

func lowBalanceEvent() notify.Event {
	return notify.Event{
		ID:   "ev-123",
		Kind: notify.EventLowBalance,
		Reading: &model.Reading{
			RemainingMoney:  4.2,
			RemainingEnergy: 8.4,
			RoomDisplayName: "220407",
			CapturedAt:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWebhookSender_Send(t *testing.T) {
	var received map[string]any
	var eventHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		eventHeader = r.Header.Get("X-Event-Type")

		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := notify.NewWebhookSender(notify.WebhookConfig{URL: server.URL})
	err := s.Send(context.Background(), lowBalanceEvent())
	require.NoError(t, err)

	assert.Equal(t, "low_balance", eventHeader)
	assert.Equal(t, "ev-123", received["id"])
	reading, ok := received["reading"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 4.2, reading["remaining_money"], 0.001)
}

func TestWebhookSender_Send_WithHMAC(t *testing.T) {
	var signature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get("X-Signature-256")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := notify.NewWebhookSender(notify.WebhookConfig{URL: server.URL, Secret: "test-secret"})
	err := s.Send(context.Background(), lowBalanceEvent())
	require.NoError(t, err)
	assert.Contains(t, signature, "sha256=")
}

func TestWebhookSender_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := notify.NewWebhookSender(notify.WebhookConfig{URL: server.URL})
	err := s.Send(context.Background(), lowBalanceEvent())
	assert.Error(t, err)
}
