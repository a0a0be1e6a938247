package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type IncomingMessageRepository struct {
	DB *sql.DB
}

func NewIncomingMessageRepository(db *sql.DB) *IncomingMessageRepository {
	return &IncomingMessageRepository{DB: db}
}

func (r *IncomingMessageRepository) Create(ctx context.Context, m *entity.IncomingMessage) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO whatsapp_incoming_messages (id, from_number, body, provider_message_id, received_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.FromNumber, m.Body, nullString(m.ProviderMessageID), m.ReceivedAt,
	)
	return err
}

func (r *IncomingMessageRepository) List(ctx context.Context, limit int) ([]*entity.IncomingMessage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, from_number, body, provider_message_id, received_at
		FROM whatsapp_incoming_messages
		ORDER BY received_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*entity.IncomingMessage
	for rows.Next() {
		var (
			m          entity.IncomingMessage
			providerID sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.FromNumber, &m.Body, &providerID, &m.ReceivedAt); err != nil {
			return nil, err
		}
		m.ProviderMessageID = derefString(providerID)
		res = append(res, &m)
	}
	return res, rows.Err()
}
