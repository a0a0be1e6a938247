package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type PromoterRepository struct {
	DB *sql.DB
}

func NewPromoterRepository(db *sql.DB) *PromoterRepository {
	return &PromoterRepository{DB: db}
}

func (r *PromoterRepository) Create(ctx context.Context, p *entity.Promoter) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO promoters (id, name, phone, email, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Phone, nullString(p.Email), p.CreatedAt,
	)
	return err
}

func (r *PromoterRepository) FindByID(ctx context.Context, id string) (*entity.Promoter, error) {
	var (
		p     entity.Promoter
		email sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, phone, email, created_at FROM promoters WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Phone, &email, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPromoterNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Email = derefString(email)
	return &p, nil
}

func (r *PromoterRepository) List(ctx context.Context) ([]*entity.Promoter, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, phone, email, created_at FROM promoters ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*entity.Promoter
	for rows.Next() {
		var (
			p     entity.Promoter
			email sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &email, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Email = derefString(email)
		res = append(res, &p)
	}
	return res, rows.Err()
}
