package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrPromoterNotFound = errors.New("promotora não encontrada")

type Promoter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPromoter(name, phone, email string) *Promoter {
	return &Promoter{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     phone,
		Email:     email,
		CreatedAt: time.Now(),
	}
}

type PromoterRepositoryInterface interface {
	Create(ctx context.Context, p *Promoter) error
	FindByID(ctx context.Context, id string) (*Promoter, error)
	List(ctx context.Context) ([]*Promoter, error)
}
