package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type MessageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

const messageColumns = `
	id, campaign_id, recipient_number, recipient_name, message_body, status,
	provider_message_id, error_message, sent_at, delivered_at, read_at, created_at`

const insertMessage = `
	INSERT INTO whatsapp_messages (id, campaign_id, recipient_number, recipient_name, message_body, status,
		provider_message_id, error_message, sent_at, delivered_at, read_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func (r *MessageRepository) Create(ctx context.Context, m *entity.Message) error {
	_, err := r.DB.ExecContext(ctx, insertMessage, messageArgs(m)...)
	return err
}

// CreateBatch grava tudo ou nada.
func (r *MessageRepository) CreateBatch(ctx context.Context, msgs []*entity.Message) error {
	return inTx(ctx, r.DB, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertMessage)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, m := range msgs {
			if _, err := stmt.ExecContext(ctx, messageArgs(m)...); err != nil {
				return err
			}
		}
		return nil
	})
}

func messageArgs(m *entity.Message) []any {
	return []any{
		m.ID, m.CampaignID, m.RecipientNumber, nullString(m.RecipientName), m.Body, m.Status,
		nullString(m.ProviderMessageID), nullString(m.ErrorMessage), m.SentAt, m.DeliveredAt, m.ReadAt, m.CreatedAt,
	}
}

func (r *MessageRepository) FindByCampaign(ctx context.Context, campaignID string) ([]*entity.Message, error) {
	return r.query(ctx, `SELECT `+messageColumns+` FROM whatsapp_messages
		WHERE campaign_id = $1 ORDER BY created_at`, campaignID)
}

func (r *MessageRepository) FindPendingByCampaign(ctx context.Context, campaignID string) ([]*entity.Message, error) {
	return r.query(ctx, `SELECT `+messageColumns+` FROM whatsapp_messages
		WHERE campaign_id = $1 AND status = $2 ORDER BY created_at`, campaignID, entity.MessagePending)
}

func (r *MessageRepository) FindByProviderID(ctx context.Context, providerMessageID string) (*entity.Message, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM whatsapp_messages
		WHERE provider_message_id = $1 LIMIT 1`, providerMessageID)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrMessageNotFound
	}
	return m, err
}

// UpdateStatus usa COALESCE nos timestamps para nunca apagar um carimbo já
// gravado. O WHERE no status lido impede que um envio ou evento atrasado
// sobrescreva um status mais novo.
func (r *MessageRepository) UpdateStatus(ctx context.Context, m *entity.Message, from entity.MessageStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE whatsapp_messages SET
			status = $2,
			provider_message_id = COALESCE($3, provider_message_id),
			error_message = $4,
			sent_at = COALESCE(sent_at, $5),
			delivered_at = COALESCE(delivered_at, $6),
			read_at = COALESCE(read_at, $7)
		WHERE id = $1 AND status = $8`,
		m.ID, m.Status, nullString(m.ProviderMessageID), nullString(m.ErrorMessage), m.SentAt, m.DeliveredAt, m.ReadAt, from,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var current entity.MessageStatus
	err = r.DB.QueryRowContext(ctx, `SELECT status FROM whatsapp_messages WHERE id = $1`, m.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrMessageNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s", entity.ErrStatusRegression, current, m.Status)
}

func (r *MessageRepository) query(ctx context.Context, q string, args ...any) ([]*entity.Message, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*entity.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func scanMessage(s scanner) (*entity.Message, error) {
	var (
		m                           entity.Message
		campaignID                  sql.NullString
		name, providerID, errMsg    sql.NullString
		sentAt, deliveredAt, readAt sql.NullTime
	)
	err := s.Scan(
		&m.ID, &campaignID, &m.RecipientNumber, &name, &m.Body, &m.Status,
		&providerID, &errMsg, &sentAt, &deliveredAt, &readAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if campaignID.Valid {
		m.CampaignID = &campaignID.String
	}
	m.RecipientName = derefString(name)
	m.ProviderMessageID = derefString(providerID)
	m.ErrorMessage = derefString(errMsg)
	m.SentAt = nullTime(sentAt)
	m.DeliveredAt = nullTime(deliveredAt)
	m.ReadAt = nullTime(readAt)
	return &m, nil
}
