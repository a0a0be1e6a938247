package entity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type NotificationChannel string

const (
	ChannelWhatsApp NotificationChannel = "WA"
	ChannelEmail    NotificationChannel = "EMAIL"
)

type NotificationStatus string

const (
	NotificationPendente NotificationStatus = "PENDENTE"
	NotificationEnviado  NotificationStatus = "ENVIADO"
	NotificationFalhou   NotificationStatus = "FALHOU"
)

var ErrNotificationNotFound = errors.New("notificação não encontrada")

// Notification é o pacote entregue à promotora: um snapshot do lead e da
// consultora no momento do repasse.
type Notification struct {
	ID        string              `json:"id"`
	Type      NotificationChannel `json:"type"`
	Recipient string              `json:"recipient"`
	Payload   json.RawMessage     `json:"payload"`
	Status    NotificationStatus  `json:"status"`
	LeadID    string              `json:"lead_id"`
	Error     string              `json:"error,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	SentAt    *time.Time          `json:"sent_at,omitempty"`
}

func NewNotification(leadID string, channel NotificationChannel, recipient string, snapshot *LeadDetails) (*Notification, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	return &Notification{
		ID:        uuid.New().String(),
		Type:      channel,
		Recipient: recipient,
		Payload:   payload,
		Status:    NotificationPendente,
		LeadID:    leadID,
		CreatedAt: time.Now(),
	}, nil
}

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id string) (*Notification, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, n *Notification) error
	// ListPending devolve notificações PENDENTE criadas antes de createdBefore,
	// das mais antigas para as mais novas.
	ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*Notification, error)
}
