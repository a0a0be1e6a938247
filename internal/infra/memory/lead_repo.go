package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type ConsultantRepo struct {
	s *Store
}

func (r *ConsultantRepo) CreateWithLead(_ context.Context, c *entity.Consultant, lead *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cpfIndex[c.CPF]; ok {
		return entity.ErrConsultantAlreadyExists
	}
	r.s.consultants[c.ID] = *c
	r.s.cpfIndex[c.CPF] = c.ID
	r.s.leads[lead.ID] = *lead
	r.s.leadOrder = append(r.s.leadOrder, lead.ID)
	return nil
}

func (r *ConsultantRepo) FindByID(_ context.Context, id string) (*entity.Consultant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.consultants[id]
	if !ok {
		return nil, entity.ErrConsultantNotFound
	}
	return &c, nil
}

// FindByIDs ignora ids desconhecidos; quem chama confere o que faltou.
func (r *ConsultantRepo) FindByIDs(_ context.Context, ids []string) ([]*entity.Consultant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]*entity.Consultant, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.s.consultants[id]; ok {
			res = append(res, &c)
		}
	}
	return res, nil
}

type LeadRepo struct {
	s *Store
}

func (r *LeadRepo) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return &l, nil
}

func (r *LeadRepo) FindDetails(_ context.Context, id string) (*entity.LeadDetails, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	c, ok := r.s.consultants[l.ConsultantID]
	if !ok {
		return nil, fmt.Errorf("lead %s: %w", id, entity.ErrConsultantNotFound)
	}
	return &entity.LeadDetails{Lead: l, Consultant: c}, nil
}

// List devolve os leads do mais novo para o mais antigo.
func (r *LeadRepo) List(_ context.Context, status entity.LeadStatus) ([]*entity.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]*entity.Lead, 0, len(r.s.leadOrder))
	for i := len(r.s.leadOrder) - 1; i >= 0; i-- {
		l := r.s.leads[r.s.leadOrder[i]]
		if status != "" && l.Status != status {
			continue
		}
		res = append(res, &l)
	}
	return res, nil
}

func (r *LeadRepo) History(_ context.Context, leadID string) ([]entity.LeadHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := r.s.history[leadID]
	res := make([]entity.LeadHistory, len(entries))
	copy(res, entries)
	return res, nil
}

func (r *LeadRepo) ApplyTransition(_ context.Context, lead *entity.Lead, entry *entity.LeadHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.leads[lead.ID]
	if !ok {
		return entity.ErrLeadNotFound
	}
	if current.Status != entry.FromStatus {
		return fmt.Errorf("%w: status atual %s", entity.ErrLeadAlreadyDecided, current.Status)
	}

	r.s.leads[lead.ID] = *lead
	r.s.history[lead.ID] = append(r.s.history[lead.ID], *entry)
	return nil
}

type PromoterRepo struct {
	s *Store
}

func (r *PromoterRepo) Create(_ context.Context, p *entity.Promoter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.promoters[p.ID] = *p
	r.s.promoterOrder = append(r.s.promoterOrder, p.ID)
	return nil
}

func (r *PromoterRepo) FindByID(_ context.Context, id string) (*entity.Promoter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.promoters[id]
	if !ok {
		return nil, entity.ErrPromoterNotFound
	}
	return &p, nil
}

func (r *PromoterRepo) List(_ context.Context) ([]*entity.Promoter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]*entity.Promoter, 0, len(r.s.promoterOrder))
	for _, id := range r.s.promoterOrder {
		p := r.s.promoters[id]
		res = append(res, &p)
	}
	return res, nil
}

type NotificationRepo struct {
	s *Store
}

func (r *NotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.notifications[n.ID] = *n
	return nil
}

func (r *NotificationRepo) FindByID(_ context.Context, id string) (*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, entity.ErrNotificationNotFound
	}
	return &n, nil
}

func (r *NotificationRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.notifications, id)
	return nil
}

func (r *NotificationRepo) UpdateStatus(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notifications[n.ID]; !ok {
		return entity.ErrNotificationNotFound
	}
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *NotificationRepo) ListPending(_ context.Context, createdBefore time.Time, limit int) ([]*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var res []*entity.Notification
	for _, n := range r.s.notifications {
		if n.Status == entity.NotificationPendente && n.CreatedAt.Before(createdBefore) {
			res = append(res, &n)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// ListByLead é usado nos testes para conferir quantas notificações um
// repasse gerou.
func (r *NotificationRepo) ListByLead(leadID string) []*entity.Notification {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var res []*entity.Notification
	for _, n := range r.s.notifications {
		if n.LeadID == leadID {
			res = append(res, &n)
		}
	}
	return res
}
