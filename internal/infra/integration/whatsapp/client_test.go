package whatsapp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/rede-consultoras/internal/infra/integration/whatsapp"
)

// TestSendTextShortNumber - número curto não chega a chamar a API
func TestSendTextShortNumber(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := whatsapp.NewClient(srv.URL, "token", "123")
	_, err := c.SendText(context.Background(), "123", "oi")
	require.ErrorIs(t, err, whatsapp.ErrInvalidNumber)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

// TestSendTextNotConfigured - sem token ou phone id
func TestSendTextNotConfigured(t *testing.T) {
	c := whatsapp.NewClient("http://127.0.0.1:1", "", "")
	_, err := c.SendText(context.Background(), "11999999999", "oi")
	assert.ErrorIs(t, err, whatsapp.ErrNotConfigured)
}

// TestSendTextSuccess - corpo no formato da Cloud API e id devolvido
func TestSendTextSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PHONE/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "whatsapp", body["messaging_product"])
		assert.Equal(t, "5511999999999", body["to"])
		assert.Equal(t, "text", body["type"])
		assert.Equal(t, "Olá!", body["text"].(map[string]any)["body"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messaging_product":"whatsapp","contacts":[{"input":"5511999999999","wa_id":"5511999999999"}],"messages":[{"id":"wamid.HBgN"}]}`))
	}))
	defer srv.Close()

	c := whatsapp.NewClient(srv.URL, "token", "PHONE")
	id, err := c.SendText(context.Background(), "+55 (11) 99999-9999", "Olá!")
	require.NoError(t, err)
	assert.Equal(t, "wamid.HBgN", id)
}

// TestSendTextAPIError - erro da API vira erro com a mensagem do provedor
func TestSendTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Recipient phone number not in allowed list","code":131030,"type":"OAuthException"}}`))
	}))
	defer srv.Close()

	c := whatsapp.NewClient(srv.URL, "token", "PHONE")
	_, err := c.SendText(context.Background(), "5511999999999", "oi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in allowed list")
}
