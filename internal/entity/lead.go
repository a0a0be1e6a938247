package entity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadEmAnalise LeadStatus = "EM_ANALISE"
	LeadAprovado  LeadStatus = "APROVADO"
	LeadReprovado LeadStatus = "REPROVADO"
)

var (
	ErrLeadNotFound       = errors.New("lead não encontrado")
	ErrLeadAlreadyDecided = errors.New("lead já foi aprovado ou reprovado")
	ErrInvalidLeadStatus  = errors.New("status de lead inválido")
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadEmAnalise, LeadAprovado, LeadReprovado:
		return true
	}
	return false
}

func (s LeadStatus) Terminal() bool {
	return s == LeadAprovado || s == LeadReprovado
}

// Lead é uma candidatura de uma consultora. Só sai de EM_ANALISE uma vez.
type Lead struct {
	ID               string     `json:"id"`
	ConsultantID     string     `json:"consultant_id"`
	Status           LeadStatus `json:"status"`
	PromoterID       *string    `json:"promoter_id,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	DebtAmount       float64    `json:"debt_amount"`
	ConsultationDate *time.Time `json:"consultation_date,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	ForwardedAt      *time.Time `json:"forwarded_at,omitempty"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewLead(consultantID string) *Lead {
	now := time.Now()
	return &Lead{
		ID:           uuid.New().String(),
		ConsultantID: consultantID,
		Status:       LeadEmAnalise,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// LeadHistory é uma entrada imutável da trilha de auditoria.
type LeadHistory struct {
	ID          string     `json:"id"`
	LeadID      string     `json:"lead_id"`
	ActorUserID string     `json:"actor_user_id"`
	FromStatus  LeadStatus `json:"from_status"`
	ToStatus    LeadStatus `json:"to_status"`
	Reason      string     `json:"reason"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Rejection struct {
	Reason           string
	DebtAmount       float64
	ConsultationDate *time.Time
	Notes            string
}

// Approve move o lead para APROVADO e devolve a entrada de histórico
// correspondente. O lead só é alterado se a transição for válida.
func (l *Lead) Approve(actorUserID, promoterID, notes string, at time.Time) (*LeadHistory, error) {
	entry, err := l.transition(actorUserID, LeadAprovado, notes, at)
	if err != nil {
		return nil, err
	}
	l.PromoterID = &promoterID
	l.Notes = notes
	l.ForwardedAt = &at
	l.ReviewedAt = &at
	return entry, nil
}

func (l *Lead) Reject(actorUserID string, r Rejection, at time.Time) (*LeadHistory, error) {
	entry, err := l.transition(actorUserID, LeadReprovado, r.Reason, at)
	if err != nil {
		return nil, err
	}
	l.RejectionReason = r.Reason
	l.DebtAmount = r.DebtAmount
	l.ConsultationDate = r.ConsultationDate
	l.Notes = r.Notes
	l.ReviewedAt = &at
	return entry, nil
}

func (l *Lead) transition(actorUserID string, to LeadStatus, reason string, at time.Time) (*LeadHistory, error) {
	if l.Status != LeadEmAnalise {
		return nil, fmt.Errorf("%w: status atual %s", ErrLeadAlreadyDecided, l.Status)
	}

	from := l.Status
	l.Status = to
	l.UpdatedAt = at

	return &LeadHistory{
		ID:          uuid.New().String(),
		LeadID:      l.ID,
		ActorUserID: actorUserID,
		FromStatus:  from,
		ToStatus:    to,
		Reason:      reason,
		CreatedAt:   at,
	}, nil
}

// ReplayStatus reconstrói o status de um lead a partir do histórico ordenado.
func ReplayStatus(entries []LeadHistory) (LeadStatus, error) {
	status := LeadEmAnalise
	for _, e := range entries {
		if e.FromStatus != status {
			return "", fmt.Errorf("histórico inconsistente: esperado from=%s, obtido %s", status, e.FromStatus)
		}
		if !e.ToStatus.Valid() {
			return "", ErrInvalidLeadStatus
		}
		status = e.ToStatus
	}
	return status, nil
}

type LeadRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Lead, error)
	FindDetails(ctx context.Context, id string) (*LeadDetails, error)
	List(ctx context.Context, status LeadStatus) ([]*Lead, error)
	History(ctx context.Context, leadID string) ([]LeadHistory, error)

	// ApplyTransition grava o novo estado do lead e a entrada de histórico
	// atomicamente. Retorna ErrLeadAlreadyDecided se o lead já saiu de EM_ANALISE.
	ApplyTransition(ctx context.Context, lead *Lead, entry *LeadHistory) error
}
