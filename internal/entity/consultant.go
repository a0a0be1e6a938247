package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	// IMPORTANTE: NÃO adicione imports de usecase ou infra aqui!
)

var (
	ErrConsultantNotFound      = errors.New("consultora não encontrada")
	ErrConsultantAlreadyExists = errors.New("já existe uma consultora com este CPF")
)

// Value Object: Address
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
}

// Entidade: Consultant (revendedora em potencial)
type Consultant struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	CPF     string  `json:"cpf"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email"`
	City    string  `json:"city"`
	Address Address `json:"address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewConsultant(name, cpf, phone, email, city string, address Address) (*Consultant, error) {
	now := time.Now()
	c := &Consultant{
		ID:        uuid.New().String(),
		Name:      name,
		CPF:       cpf,
		Phone:     phone,
		Email:     email,
		City:      city,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Consultant) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.CPF == "" {
		return errors.New("cpf is required")
	}
	if c.Phone == "" {
		return errors.New("phone is required")
	}
	return nil
}

// LeadDetails é o Lead junto com a consultora (e o endereço dela).
type LeadDetails struct {
	Lead       Lead       `json:"lead"`
	Consultant Consultant `json:"consultant"`
}

type ConsultantRepositoryInterface interface {
	// CreateWithLead grava consultora, endereço e o lead inicial numa única transação.
	CreateWithLead(ctx context.Context, c *Consultant, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Consultant, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Consultant, error)
}
