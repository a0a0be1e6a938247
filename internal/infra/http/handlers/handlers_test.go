package handlers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/rede-consultoras/internal/entity"
	"github.com/xavierca1/rede-consultoras/internal/infra/http/handlers"
	"github.com/xavierca1/rede-consultoras/internal/infra/memory"
	"github.com/xavierca1/rede-consultoras/internal/usecase"
)

// newTestRouter monta as rotas sobre o store em memória, sem integrações.
func newTestRouter(store *memory.Store) http.Handler {
	registerUC := usecase.NewRegisterConsultantUseCase(store.Consultants())
	workflowUC := usecase.NewApprovalWorkflowUseCase(store.Leads(), store.Promoters())
	queryUC := usecase.NewLeadQueryUseCase(store.Leads())
	handoffUC := usecase.NewPromoterHandoffUseCase(store.Leads(), store.Notifications(), nil, "fallback@example.com")
	promoterUC := usecase.NewPromoterUseCase(store.Promoters())
	dispatchUC := usecase.NewCampaignDispatchUseCase(store.Campaigns(), store.Messages(), store.Consultants(), usecase.NewSimulatedDeliveryPolicy(3), 4)
	inboundUC := usecase.NewInboundRecorderUseCase(store.Incoming(), store.Messages(), nil, nil, nil, "")
	statusUC := usecase.NewDeliveryStatusUseCase(store.Messages())

	leadHandler := handlers.NewLeadHandler(registerUC, workflowUC, queryUC, handoffUC, handlers.NewRateLimiter(100, time.Minute))
	promoterHandler := handlers.NewPromoterHandler(promoterUC)
	campaignHandler := handlers.NewCampaignHandler(dispatchUC, inboundUC)
	webhookHandler := handlers.NewWebhookHandler(inboundUC, statusUC, "T", "5511900000000", "")

	r := chi.NewRouter()
	r.Post("/consultants", leadHandler.Register)
	r.Route("/leads", func(r chi.Router) {
		r.Get("/", leadHandler.List)
		r.Get("/{id}", leadHandler.Get)
		r.Get("/{id}/history", leadHandler.History)
		r.Post("/{id}/approve", leadHandler.Approve)
		r.Post("/{id}/reject", leadHandler.Reject)
		r.Post("/{id}/send-to-promoter", leadHandler.SendToPromoter)
	})
	r.Post("/promoters", promoterHandler.Create)
	r.Get("/promoters", promoterHandler.List)
	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", campaignHandler.Create)
		r.Get("/{id}", campaignHandler.Get)
		r.Post("/{id}/recipients", campaignHandler.AddRecipients)
		r.Post("/{id}/send", campaignHandler.Send)
	})
	r.Post("/messages", campaignHandler.SendSingle)
	r.Get("/messages/incoming", campaignHandler.ListIncoming)
	r.Get("/webhook/whatsapp", webhookHandler.Verify)
	r.Post("/webhook/whatsapp", webhookHandler.Handle)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "admin-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

var registerBody = map[string]string{
	"name":     "Ana Paula Souza",
	"cpf":      "529.982.247-25",
	"phone":    "(11) 99999-9999",
	"city":     "São Paulo",
	"street":   "Rua das Flores",
	"number":   "100",
	"state":    "SP",
	"zip_code": "01310-100",
}

// ============ LEADS ============

// TestLeadLifecycleHTTP - cadastro, aprovação, segunda decisão e repasse
func TestLeadLifecycleHTTP(t *testing.T) {
	store := memory.NewStore()
	h := newTestRouter(store)

	rec := do(t, h, http.MethodPost, "/consultants", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[usecase.RegisterConsultantOutput](t, rec)
	assert.Equal(t, entity.LeadEmAnalise, out.Status)

	rec = do(t, h, http.MethodPost, "/consultants", registerBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, usecase.CodeConflict, decode[handlers.ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodPost, "/promoters", map[string]string{"name": "Carla", "phone": "11988887777"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	promoter := decode[entity.Promoter](t, rec)

	rec = do(t, h, http.MethodPost, "/leads/"+out.LeadID+"/approve", map[string]string{"promoter_id": promoter.ID, "notes": "ok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, entity.LeadAprovado, decode[entity.Lead](t, rec).Status)

	rec = do(t, h, http.MethodPost, "/leads/"+out.LeadID+"/reject", map[string]string{"reason": "tarde demais"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, usecase.CodeInvalidTransition, decode[handlers.ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodGet, "/leads/"+out.LeadID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]entity.LeadHistory](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, "admin-1", history[0].ActorUserID)

	rec = do(t, h, http.MethodGet, "/leads/?status=APROVADO", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entity.Lead](t, rec), 1)

	// corpo vazio: EMAIL para a promotora do lead
	req := httptest.NewRequest(http.MethodPost, "/leads/"+out.LeadID+"/send-to-promoter", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	n := decode[entity.Notification](t, rec)
	assert.Equal(t, entity.ChannelEmail, n.Type)
	assert.Equal(t, promoter.ID, n.Recipient)
	assert.Equal(t, entity.NotificationPendente, n.Status)
}

// TestErrorStatusMapping - VALIDATION 400, NOT_FOUND 404, JSON inválido 400
func TestErrorStatusMapping(t *testing.T) {
	h := newTestRouter(memory.NewStore())

	rec := do(t, h, http.MethodGet, "/leads/nao-e-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, usecase.CodeValidation, decode[handlers.ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodGet, "/leads/6f1c3a52-8d7e-4b8a-9d35-2f0f4b8c1e11", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, usecase.CodeNotFound, decode[handlers.ErrorResponse](t, rec).Error)

	req := httptest.NewRequest(http.MethodPost, "/consultants", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/consultants", map[string]string{"name": "A"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[handlers.ErrorResponse](t, rec).Fields)
}

// TestRegisterRateLimited - limite por IP no cadastro público
func TestRegisterRateLimited(t *testing.T) {
	store := memory.NewStore()
	leadHandler := handlers.NewLeadHandler(
		usecase.NewRegisterConsultantUseCase(store.Consultants()), nil, nil, nil,
		handlers.NewRateLimiter(1, time.Minute),
	)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/consultants", strings.NewReader("{}"))
		req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
		rec := httptest.NewRecorder()
		leadHandler.Register(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusBadRequest, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

// TestRateLimiterRun - limpeza tira IPs parados e para quando o ctx cancela
func TestRateLimiterRun(t *testing.T) {
	rl := handlers.NewRateLimiter(5, time.Millisecond)
	rl.CleanupInterval = 5 * time.Millisecond
	require.True(t, rl.Allow("10.0.0.1"))
	require.Equal(t, 1, rl.Visitors())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return rl.Visitors() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run não parou depois do cancelamento")
	}
}

// ============ CAMPANHAS ============

// TestCampaignFlowHTTP - criar, adicionar destinatários, enviar e consultar
func TestCampaignFlowHTTP(t *testing.T) {
	store := memory.NewStore()
	h := newTestRouter(store)

	rec := do(t, h, http.MethodPost, "/consultants", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	contactID := decode[usecase.RegisterConsultantOutput](t, rec).ConsultantID

	rec = do(t, h, http.MethodPost, "/campaigns/", map[string]string{"name": "Promo", "message_template": "Olá {nome}, promoção!"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	campaign := decode[entity.Campaign](t, rec)

	rec = do(t, h, http.MethodPost, "/campaigns/"+campaign.ID+"/send", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/campaigns/"+campaign.ID+"/recipients", map[string][]string{"contact_ids": {contactID}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[usecase.AddRecipientsOutput](t, rec).Added)

	rec = do(t, h, http.MethodPost, "/campaigns/"+campaign.ID+"/send", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[usecase.DispatchResult](t, rec)
	assert.Equal(t, 1, result.Total)

	rec = do(t, h, http.MethodGet, "/campaigns/"+campaign.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[usecase.CampaignDetail](t, rec)
	assert.Equal(t, entity.CampaignSent, detail.Campaign.Status)
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "Olá Ana, promoção!", detail.Messages[0].Body)
	assert.NotEqual(t, entity.MessagePending, detail.Messages[0].Status)

	rec = do(t, h, http.MethodPost, "/campaigns/"+campaign.ID+"/recipients", map[string][]string{"contact_ids": {contactID}})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// TestSendSingleHTTP - número curto é 400, válido é 202 em pending
func TestSendSingleHTTP(t *testing.T) {
	h := newTestRouter(memory.NewStore())

	rec := do(t, h, http.MethodPost, "/messages", map[string]string{"to": "123", "body": "oi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/messages", map[string]string{"to": "11999999999", "body": "oi"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, entity.MessagePending, decode[entity.Message](t, rec).Status)
}

// ============ WEBHOOK ============

// TestWebhookVerify - handshake da Cloud API
func TestWebhookVerify(t *testing.T) {
	h := newTestRouter(memory.NewStore())

	rec := do(t, h, http.MethodGet, "/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=T&hub.challenge=123", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "123", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=X&hub.challenge=123", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodGet, "/webhook/whatsapp?hub.mode=unsubscribe&hub.verify_token=T&hub.challenge=123", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

const webhookPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "1",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "messages": [
          {"id": "wamid.in1", "from": "5511988887777", "timestamp": "1700000000", "type": "text", "text": {"body": "Quero revender"}},
          {"id": "wamid.in2", "from": "5511988887777", "timestamp": "1700000001", "type": "image"},
          {"id": "wamid.in3", "from": "5511900000000", "timestamp": "1700000002", "type": "text", "text": {"body": "eco"}}
        ],
        "statuses": [
          {"id": "wamid.out1", "status": "read", "timestamp": "1700000100", "recipient_id": "5511988887777"}
        ]
      }
    }]
  }]
}`

// TestWebhookHandle - grava só texto de terceiros e aplica status
func TestWebhookHandle(t *testing.T) {
	store := memory.NewStore()
	h := newTestRouter(store)

	out := entity.NewMessage(nil, "5511988887777", "", "Olá!")
	out.ProviderMessageID = "wamid.out1"
	require.NoError(t, out.Advance(entity.MessageSent, time.Unix(1700000050, 0)))
	require.NoError(t, store.Messages().Create(t.Context(), out))

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(webhookPayload))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/messages/incoming?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	incoming := decode[[]entity.IncomingMessage](t, rec)
	require.Len(t, incoming, 1)
	assert.Equal(t, "Quero revender", incoming[0].Body)

	stored, err := store.Messages().FindByProviderID(t.Context(), "wamid.out1")
	require.NoError(t, err)
	assert.Equal(t, entity.MessageRead, stored.Status)
	assert.NotNil(t, stored.DeliveredAt)

	t.Run("payload inválido", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader("not json"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

// TestWebhookSignature - com app secret o corpo precisa vir assinado
func TestWebhookSignature(t *testing.T) {
	store := memory.NewStore()
	inboundUC := usecase.NewInboundRecorderUseCase(store.Incoming(), store.Messages(), nil, nil, nil, "")
	statusUC := usecase.NewDeliveryStatusUseCase(store.Messages())
	h := handlers.NewWebhookHandler(inboundUC, statusUC, "T", "", "app-secret")

	body := `{"object":"whatsapp_business_account","entry":[]}`
	mac := hmac.New(sha256.New, []byte("app-secret"))
	mac.Write([]byte(body))
	valid := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	cases := []struct {
		name      string
		signature string
		want      int
	}{
		{"assinatura válida", valid, http.StatusOK},
		{"sem assinatura", "", http.StatusUnauthorized},
		{"assinatura errada", "sha256=" + strings.Repeat("0", 64), http.StatusUnauthorized},
		{"formato inválido", "md5=abc", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(body))
			if tc.signature != "" {
				req.Header.Set("X-Hub-Signature-256", tc.signature)
			}
			rec := httptest.NewRecorder()
			h.Handle(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
