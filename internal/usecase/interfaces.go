package usecase

import (
	"context"

	"github.com/xavierca1/rede-consultoras/internal/entity"
	"github.com/xavierca1/rede-consultoras/internal/infra/queue"
)

// MessageTransport envia texto pelo WhatsApp e devolve o id do provedor.
type MessageTransport interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// ReplyGenerator gera a resposta automática para uma mensagem recebida.
// Resposta vazia significa "sem conteúdo".
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, systemPrompt, userText string) (string, error)
}

type QueueProducerInterface interface {
	PublishNotification(ctx context.Context, payload queue.NotificationPayload) error
}

type EmailService interface {
	SendLeadHandoff(to, promoterName string, details *entity.LeadDetails) error
}

// InboundDeduper devolve true na primeira vez que vê um id de mensagem.
// Forget libera o id para que uma reentrega seja processada de novo.
type InboundDeduper interface {
	FirstSeen(ctx context.Context, providerMessageID string) (bool, error)
	Forget(ctx context.Context, providerMessageID string) error
}

type RegisterConsultantInput struct {
	Name       string `json:"name"`
	CPF        string `json:"cpf"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	City       string `json:"city"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
}

type RegisterConsultantOutput struct {
	ConsultantID string            `json:"consultant_id"`
	LeadID       string            `json:"lead_id"`
	Status       entity.LeadStatus `json:"status"`
	Msg          string            `json:"msg"`
}

type ApproveLeadInput struct {
	LeadID      string `json:"-"`
	ActorUserID string `json:"-"`
	PromoterID  string `json:"promoter_id"`
	Notes       string `json:"notes"`
}

type RejectLeadInput struct {
	LeadID           string  `json:"-"`
	ActorUserID      string  `json:"-"`
	Reason           string  `json:"reason"`
	DebtAmount       float64 `json:"debt_amount"`
	ConsultationDate string  `json:"consultation_date"`
	Notes            string  `json:"notes"`
}

type SendToPromoterInput struct {
	LeadID    string `json:"-"`
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
}

type CreatePromoterInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type CreateCampaignInput struct {
	Name     string `json:"name"`
	Template string `json:"message_template"`
}

type AddRecipientsInput struct {
	CampaignID string   `json:"-"`
	ContactIDs []string `json:"contact_ids"`
}

type AddRecipientsOutput struct {
	CampaignID string `json:"campaign_id"`
	Added      int    `json:"added"`
}

type SendSingleInput struct {
	To         string `json:"to"`
	Body       string `json:"body"`
	CampaignID string `json:"campaign_id"`
}

type CampaignDetail struct {
	Campaign *entity.Campaign            `json:"campaign"`
	Messages []*entity.Message           `json:"messages"`
	Stats    map[entity.MessageStatus]int `json:"stats"`
}

// DispatchResult resume um envio de campanha. Failed conta as mensagens cujo
// update não pôde ser gravado (continuam pending e entram no próximo envio).
type DispatchResult struct {
	CampaignID string                       `json:"campaign_id"`
	Total      int                          `json:"total"`
	Succeeded  int                          `json:"succeeded"`
	Failed     int                          `json:"failed"`
	Skipped    int                          `json:"skipped"`
	ByStatus   map[entity.MessageStatus]int `json:"by_status"`
}

type InboundMessageInput struct {
	From              string
	Body              string
	ProviderMessageID string
}

type DeliveryStatusInput struct {
	ProviderMessageID string
	Status            string
	Timestamp         int64
	Error             string
}
