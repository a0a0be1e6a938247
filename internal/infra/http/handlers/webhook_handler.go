package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/xavierca1/rede-consultoras/internal/infra/http/middleware"
	"github.com/xavierca1/rede-consultoras/internal/infra/integration/whatsapp"
	"github.com/xavierca1/rede-consultoras/internal/usecase"
)

type WebhookHandler struct {
	InboundUC   *usecase.InboundRecorderUseCase
	StatusUC    *usecase.DeliveryStatusUseCase
	VerifyToken string
	OwnNumber   string
	// AppSecret habilita a checagem do X-Hub-Signature-256. Vazio desliga.
	AppSecret string
}

const maxWebhookBody = 1 << 20

func NewWebhookHandler(
	inboundUC *usecase.InboundRecorderUseCase,
	statusUC *usecase.DeliveryStatusUseCase,
	verifyToken, ownNumber, appSecret string,
) *WebhookHandler {
	return &WebhookHandler{
		InboundUC:   inboundUC,
		StatusUC:    statusUC,
		VerifyToken: verifyToken,
		OwnNumber:   usecase.NormalizePhone(ownNumber),
		AppSecret:   appSecret,
	}
}

// Verify (GET) é o handshake de inscrição da Cloud API.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") != "subscribe" || h.VerifyToken == "" || q.Get("hub.verify_token") != h.VerifyToken {
		log.Printf("⚠️ [WEBHOOK] Verificação recusada (mode=%q)", q.Get("hub.mode"))
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(q.Get("hub.challenge")))
}

// Handle (POST) grava mensagens de texto recebidas e aplica atualizações de
// status. Só responde 500 se o corpo não puder ser lido ou se algo não
// puder ser gravado, para que a Cloud API reenvie.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		log.Printf("❌ [WEBHOOK] Erro ao ler corpo: %v", err)
		writeErrorResponse(w, http.StatusInternalServerError, "INVALID_PAYLOAD", "payload inválido")
		return
	}

	if h.AppSecret != "" && !validSignature(body, r.Header.Get("X-Hub-Signature-256"), h.AppSecret) {
		log.Println("⚠️ [WEBHOOK] Assinatura inválida")
		writeErrorResponse(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "assinatura inválida")
		return
	}

	var event whatsapp.WebhookEvent
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&event); err != nil {
		log.Printf("❌ [WEBHOOK] Payload inválido: %v", err)
		writeErrorResponse(w, http.StatusInternalServerError, "INVALID_PAYLOAD", "payload inválido")
		return
	}

	failed := false
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if !h.accept(msg) {
					continue
				}
				_, err := h.InboundUC.Record(r.Context(), usecase.InboundMessageInput{
					From:              msg.From,
					Body:              msg.Text.Body,
					ProviderMessageID: msg.ID,
				})
				if err != nil {
					failed = true
					continue
				}
				middleware.RecordInbound()
			}

			for _, st := range change.Value.Statuses {
				if err := h.StatusUC.Apply(r.Context(), statusInput(st)); err != nil {
					failed = true
				}
			}
		}
	}

	if failed {
		writeErrorResponse(w, http.StatusInternalServerError, "PERSISTENCE_ERROR", "falha ao processar webhook")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// validSignature confere o HMAC-SHA256 do corpo com o app secret
// (cabeçalho no formato "sha256=<hex>").
func validSignature(body []byte, header, secret string) bool {
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// accept descarta o que não é texto e os ecos do nosso próprio número.
func (h *WebhookHandler) accept(msg whatsapp.WebhookMessage) bool {
	if msg.Type != "text" || msg.Text == nil {
		return false
	}
	if h.OwnNumber != "" && usecase.NormalizePhone(msg.From) == h.OwnNumber {
		return false
	}
	return true
}

func statusInput(st whatsapp.WebhookStatus) usecase.DeliveryStatusInput {
	ts, _ := strconv.ParseInt(st.Timestamp, 10, 64)
	in := usecase.DeliveryStatusInput{
		ProviderMessageID: st.ID,
		Status:            st.Status,
		Timestamp:         ts,
	}
	if len(st.Errors) > 0 {
		in.Error = st.Errors[0].Title
	}
	return in
}
