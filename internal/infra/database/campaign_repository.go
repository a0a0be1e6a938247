package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type CampaignRepository struct {
	DB *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{DB: db}
}

func (r *CampaignRepository) Create(ctx context.Context, c *entity.Campaign) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO whatsapp_campaigns (id, name, message_template, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Template, c.Status, c.CreatedAt,
	)
	return err
}

func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*entity.Campaign, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, message_template, status, created_at, sent_at
		FROM whatsapp_campaigns WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCampaignNotFound
	}
	return c, err
}

func (r *CampaignRepository) List(ctx context.Context) ([]*entity.Campaign, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, message_template, status, created_at, sent_at
		FROM whatsapp_campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*entity.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *CampaignRepository) MarkSent(ctx context.Context, c *entity.Campaign) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE whatsapp_campaigns SET status = $2, sent_at = $3 WHERE id = $1`,
		c.ID, c.Status, c.SentAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrCampaignNotFound
	}
	return nil
}

func scanCampaign(s scanner) (*entity.Campaign, error) {
	var (
		c      entity.Campaign
		sentAt sql.NullTime
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Template, &c.Status, &c.CreatedAt, &sentAt); err != nil {
		return nil, err
	}
	c.SentAt = nullTime(sentAt)
	return &c, nil
}
