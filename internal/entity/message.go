package entity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MessageStatus string

const (
	MessagePending   MessageStatus = "pending"
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
	MessageFailed    MessageStatus = "failed"
)

var (
	ErrMessageNotFound      = errors.New("mensagem não encontrada")
	ErrInvalidMessageStatus = errors.New("status de mensagem inválido")
	ErrStatusRegression     = errors.New("status de mensagem não pode retroceder")
)

// rank da cadeia pending → sent → delivered → read. failed fica fora da cadeia.
var messageRank = map[MessageStatus]int{
	MessagePending:   0,
	MessageSent:      1,
	MessageDelivered: 2,
	MessageRead:      3,
}

func (s MessageStatus) Valid() bool {
	_, ok := messageRank[s]
	return ok || s == MessageFailed
}

// Message é uma mensagem de WhatsApp (de campanha ou avulsa).
type Message struct {
	ID                string        `json:"id"`
	CampaignID        *string       `json:"campaign_id,omitempty"`
	RecipientNumber   string        `json:"recipient_number"`
	RecipientName     string        `json:"recipient_name,omitempty"`
	Body              string        `json:"message_body"`
	Status            MessageStatus `json:"status"`
	ProviderMessageID string        `json:"provider_message_id,omitempty"`
	ErrorMessage      string        `json:"error_message,omitempty"`
	SentAt            *time.Time    `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time    `json:"delivered_at,omitempty"`
	ReadAt            *time.Time    `json:"read_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

func NewMessage(campaignID *string, number, name, body string) *Message {
	return &Message{
		ID:              uuid.New().String(),
		CampaignID:      campaignID,
		RecipientNumber: number,
		RecipientName:   name,
		Body:            body,
		Status:          MessagePending,
		CreatedAt:       time.Now(),
	}
}

// Advance move a mensagem para frente na cadeia, carimbando cada timestamp
// uma única vez, quando o status correspondente é alcançado pela primeira vez.
// Reaplicar o status atual não faz nada.
func (m *Message) Advance(to MessageStatus, at time.Time) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMessageStatus, to)
	}
	if to == m.Status {
		return nil
	}
	if m.Status == MessageFailed || m.Status == MessageRead {
		return fmt.Errorf("%w: %s -> %s", ErrStatusRegression, m.Status, to)
	}

	if to == MessageFailed {
		if m.Status != MessagePending && m.Status != MessageSent {
			return fmt.Errorf("%w: %s -> %s", ErrStatusRegression, m.Status, to)
		}
		m.Status = MessageFailed
		return nil
	}

	if messageRank[to] <= messageRank[m.Status] {
		return fmt.Errorf("%w: %s -> %s", ErrStatusRegression, m.Status, to)
	}

	if m.SentAt == nil {
		m.SentAt = &at
	}
	if messageRank[to] >= messageRank[MessageDelivered] && m.DeliveredAt == nil {
		m.DeliveredAt = &at
	}
	if to == MessageRead && m.ReadAt == nil {
		m.ReadAt = &at
	}
	m.Status = to
	return nil
}

func (m *Message) Fail(reason string, at time.Time) error {
	if err := m.Advance(MessageFailed, at); err != nil {
		return err
	}
	m.ErrorMessage = reason
	return nil
}

type MessageRepositoryInterface interface {
	Create(ctx context.Context, m *Message) error
	CreateBatch(ctx context.Context, msgs []*Message) error
	FindByCampaign(ctx context.Context, campaignID string) ([]*Message, error)
	FindPendingByCampaign(ctx context.Context, campaignID string) ([]*Message, error)
	FindByProviderID(ctx context.Context, providerMessageID string) (*Message, error)
	// UpdateStatus grava m só se o status guardado ainda for from; se outro
	// processo mexeu na mensagem antes, devolve ErrStatusRegression.
	UpdateStatus(ctx context.Context, m *Message, from MessageStatus) error
}
