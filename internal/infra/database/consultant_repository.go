package database

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/lib/pq"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type ConsultantRepository struct {
	DB *sql.DB
}

func NewConsultantRepository(db *sql.DB) *ConsultantRepository {
	return &ConsultantRepository{DB: db}
}

const consultantColumns = `
	c.id, c.name, c.cpf, c.phone, c.email, c.city, c.created_at, c.updated_at,
	a.street, a.number, a.complement, a.district, a.city, a.state, a.zip_code`

func (r *ConsultantRepository) CreateWithLead(ctx context.Context, c *entity.Consultant, lead *entity.Lead) error {
	err := inTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO consultant (id, name, cpf, phone, email, city, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.Name, c.CPF, c.Phone, nullString(c.Email), nullString(c.City), c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return err
		}

		a := c.Address
		_, err = tx.ExecContext(ctx, `
			INSERT INTO address (consultant_id, street, number, complement, district, city, state, zip_code)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, a.Street, a.Number, nullString(a.Complement), a.District, a.City, a.State, a.ZipCode,
		)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO lead (id, consultant_id, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)`,
			lead.ID, lead.ConsultantID, lead.Status, lead.CreatedAt, lead.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrConsultantAlreadyExists
		}
		log.Printf("Erro crítico no banco: %v", err)
		return err
	}
	return nil
}

func (r *ConsultantRepository) FindByID(ctx context.Context, id string) (*entity.Consultant, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+consultantColumns+`
		FROM consultant c
		LEFT JOIN address a ON a.consultant_id = c.id
		WHERE c.id = $1`, id)

	c, err := scanConsultant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrConsultantNotFound
	}
	return c, err
}

func (r *ConsultantRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Consultant, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+consultantColumns+`
		FROM consultant c
		LEFT JOIN address a ON a.consultant_id = c.id
		WHERE c.id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*entity.Consultant
	for rows.Next() {
		c, err := scanConsultant(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConsultant(s scanner) (*entity.Consultant, error) {
	var (
		c                                    entity.Consultant
		email, city                          sql.NullString
		street, number, complement, district sql.NullString
		addrCity, state, zip                 sql.NullString
	)
	err := s.Scan(
		&c.ID, &c.Name, &c.CPF, &c.Phone, &email, &city, &c.CreatedAt, &c.UpdatedAt,
		&street, &number, &complement, &district, &addrCity, &state, &zip,
	)
	if err != nil {
		return nil, err
	}

	c.Email = derefString(email)
	c.City = derefString(city)
	c.Address = entity.Address{
		Street:     derefString(street),
		Number:     derefString(number),
		Complement: derefString(complement),
		District:   derefString(district),
		City:       derefString(addrCity),
		State:      derefString(state),
		ZipCode:    derefString(zip),
	}
	return &c, nil
}
