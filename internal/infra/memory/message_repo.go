package memory

import (
	"context"
	"fmt"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type CampaignRepo struct {
	s *Store
}

func (r *CampaignRepo) Create(_ context.Context, c *entity.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.campaigns[c.ID] = *c
	r.s.campaignOrder = append(r.s.campaignOrder, c.ID)
	return nil
}

func (r *CampaignRepo) FindByID(_ context.Context, id string) (*entity.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, entity.ErrCampaignNotFound
	}
	return &c, nil
}

func (r *CampaignRepo) List(_ context.Context) ([]*entity.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]*entity.Campaign, 0, len(r.s.campaignOrder))
	for i := len(r.s.campaignOrder) - 1; i >= 0; i-- {
		c := r.s.campaigns[r.s.campaignOrder[i]]
		res = append(res, &c)
	}
	return res, nil
}

func (r *CampaignRepo) MarkSent(_ context.Context, c *entity.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.campaigns[c.ID]
	if !ok {
		return entity.ErrCampaignNotFound
	}
	stored.Status = c.Status
	stored.SentAt = c.SentAt
	r.s.campaigns[c.ID] = stored
	return nil
}

type MessageRepo struct {
	s *Store
}

func (r *MessageRepo) Create(_ context.Context, m *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.insert(m)
	return nil
}

func (r *MessageRepo) CreateBatch(_ context.Context, msgs []*entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range msgs {
		r.insert(m)
	}
	return nil
}

func (r *MessageRepo) insert(m *entity.Message) {
	r.s.messages[m.ID] = *m
	r.s.messageOrder = append(r.s.messageOrder, m.ID)
}

func (r *MessageRepo) FindByCampaign(_ context.Context, campaignID string) ([]*entity.Message, error) {
	return r.filter(func(m entity.Message) bool {
		return m.CampaignID != nil && *m.CampaignID == campaignID
	}), nil
}

func (r *MessageRepo) FindPendingByCampaign(_ context.Context, campaignID string) ([]*entity.Message, error) {
	return r.filter(func(m entity.Message) bool {
		return m.CampaignID != nil && *m.CampaignID == campaignID && m.Status == entity.MessagePending
	}), nil
}

func (r *MessageRepo) FindByProviderID(_ context.Context, providerMessageID string) (*entity.Message, error) {
	if providerMessageID == "" {
		return nil, entity.ErrMessageNotFound
	}
	res := r.filter(func(m entity.Message) bool {
		return m.ProviderMessageID == providerMessageID
	})
	if len(res) == 0 {
		return nil, entity.ErrMessageNotFound
	}
	return res[0], nil
}

func (r *MessageRepo) UpdateStatus(_ context.Context, m *entity.Message, from entity.MessageStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.messages[m.ID]
	if !ok {
		return entity.ErrMessageNotFound
	}
	if stored.Status != from {
		return fmt.Errorf("%w: %s -> %s", entity.ErrStatusRegression, stored.Status, m.Status)
	}
	r.s.messages[m.ID] = *m
	return nil
}

// All devolve todas as mensagens na ordem de criação.
func (r *MessageRepo) All() []*entity.Message {
	return r.filter(func(entity.Message) bool { return true })
}

func (r *MessageRepo) filter(keep func(entity.Message) bool) []*entity.Message {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var res []*entity.Message
	for _, id := range r.s.messageOrder {
		m := r.s.messages[id]
		if keep(m) {
			res = append(res, &m)
		}
	}
	return res
}

type IncomingRepo struct {
	s *Store
}

func (r *IncomingRepo) Create(_ context.Context, m *entity.IncomingMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.incoming = append(r.s.incoming, *m)
	return nil
}

// List devolve as mais recentes primeiro.
func (r *IncomingRepo) List(_ context.Context, limit int) ([]*entity.IncomingMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]*entity.IncomingMessage, 0, limit)
	for i := len(r.s.incoming) - 1; i >= 0 && len(res) < limit; i-- {
		m := r.s.incoming[i]
		res = append(res, &m)
	}
	return res, nil
}
