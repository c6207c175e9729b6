package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramNotifier_Send(t *testing.T) {
	var path string
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "", 5*time.Second)
	tn.Client.SetBaseURL(srv.URL)
	require.True(t, tn.Configured())
	require.NoError(t, tn.Send(context.Background(), FormatTelegramSummary(sampleReport())))

	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", payload["chat_id"])
	assert.Equal(t, "HTML", payload["parse_mode"])
	assert.Contains(t, payload["text"], "STRONG BUY")
	assert.Contains(t, payload["text"], "TCS [IT]")
}

func TestTelegramNotifier_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("bad", "42", "", 5*time.Second)
	tn.Client.SetBaseURL(srv.URL)
	assert.Error(t, tn.Send(context.Background(), "hi"))
}

func TestTelegramNotifier_NotConfigured(t *testing.T) {
	var tn *TelegramNotifier
	assert.False(t, tn.Configured())
	assert.False(t, (&TelegramNotifier{BotToken: "x"}).Configured())
}
