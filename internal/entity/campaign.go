package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CampaignStatus string

const (
	CampaignDraft CampaignStatus = "draft"
	CampaignSent  CampaignStatus = "sent"
)

// NamePlaceholder é substituído pelo primeiro nome do contato.
const NamePlaceholder = "{nome}"

var (
	ErrCampaignNotFound    = errors.New("campanha não encontrada")
	ErrCampaignAlreadySent = errors.New("campanha já enviada")
)

type Campaign struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Template  string         `json:"message_template"`
	Status    CampaignStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	SentAt    *time.Time     `json:"sent_at,omitempty"`
}

func NewCampaign(name, template string) *Campaign {
	return &Campaign{
		ID:        uuid.New().String(),
		Name:      name,
		Template:  template,
		Status:    CampaignDraft,
		CreatedAt: time.Now(),
	}
}

// Render troca todas as ocorrências de {nome} pelo primeiro nome.
func (c *Campaign) Render(fullName string) string {
	return strings.ReplaceAll(c.Template, NamePlaceholder, FirstName(fullName))
}

func (c *Campaign) MarkSent(at time.Time) {
	c.Status = CampaignSent
	c.SentAt = &at
}

func FirstName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *Campaign) error
	FindByID(ctx context.Context, id string) (*Campaign, error)
	List(ctx context.Context) ([]*Campaign, error)
	MarkSent(ctx context.Context, c *Campaign) error
}
