// Package memory guarda todas as entidades em mapas protegidos por um único
// RWMutex. Usado nos testes e no modo local sem DATABASE_URL.
package memory

import (
	"sync"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type Store struct {
	mu sync.RWMutex

	consultants   map[string]entity.Consultant
	cpfIndex      map[string]string
	leads         map[string]entity.Lead
	leadOrder     []string
	history       map[string][]entity.LeadHistory
	promoters     map[string]entity.Promoter
	promoterOrder []string
	notifications map[string]entity.Notification
	campaigns     map[string]entity.Campaign
	campaignOrder []string
	messages      map[string]entity.Message
	messageOrder  []string
	incoming      []entity.IncomingMessage
}

func NewStore() *Store {
	return &Store{
		consultants:   make(map[string]entity.Consultant),
		cpfIndex:      make(map[string]string),
		leads:         make(map[string]entity.Lead),
		history:       make(map[string][]entity.LeadHistory),
		promoters:     make(map[string]entity.Promoter),
		notifications: make(map[string]entity.Notification),
		campaigns:     make(map[string]entity.Campaign),
		messages:      make(map[string]entity.Message),
	}
}

func (s *Store) Consultants() *ConsultantRepo     { return &ConsultantRepo{s: s} }
func (s *Store) Leads() *LeadRepo                 { return &LeadRepo{s: s} }
func (s *Store) Promoters() *PromoterRepo         { return &PromoterRepo{s: s} }
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s: s} }
func (s *Store) Campaigns() *CampaignRepo         { return &CampaignRepo{s: s} }
func (s *Store) Messages() *MessageRepo           { return &MessageRepo{s: s} }
func (s *Store) Incoming() *IncomingRepo          { return &IncomingRepo{s: s} }
