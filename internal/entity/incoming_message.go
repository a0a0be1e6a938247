package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type IncomingMessage struct {
	ID                string    `json:"id"`
	FromNumber        string    `json:"from_number"`
	Body              string    `json:"body"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	ReceivedAt        time.Time `json:"received_at"`
}

func NewIncomingMessage(from, body, providerMessageID string) *IncomingMessage {
	return &IncomingMessage{
		ID:                uuid.New().String(),
		FromNumber:        from,
		Body:              body,
		ProviderMessageID: providerMessageID,
		ReceivedAt:        time.Now(),
	}
}

type IncomingMessageRepositoryInterface interface {
	Create(ctx context.Context, m *IncomingMessage) error
	List(ctx context.Context, limit int) ([]*IncomingMessage, error)
}
