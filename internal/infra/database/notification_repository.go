package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type NotificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO notification (id, type, recipient, payload, status, lead_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.Type, n.Recipient, []byte(n.Payload), n.Status, n.LeadID, n.CreatedAt,
	)
	return err
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*entity.Notification, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, type, recipient, payload, status, lead_id, error, created_at, sent_at
		FROM notification WHERE id = $1`, id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotificationNotFound
	}
	return n, err
}

// Delete é a compensação do repasse quando a publicação na fila falha.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM notification WHERE id = $1 AND status = $2`, id, entity.NotificationPendente)
	return err
}

func (r *NotificationRepository) UpdateStatus(ctx context.Context, n *entity.Notification) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE notification SET status = $2, error = $3, sent_at = $4 WHERE id = $1`,
		n.ID, n.Status, nullString(n.Error), n.SentAt,
	)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return entity.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*entity.Notification, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, type, recipient, payload, status, lead_id, error, created_at, sent_at
		FROM notification
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3`, entity.NotificationPendente, createdBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}

func scanNotification(s scanner) (*entity.Notification, error) {
	var (
		n       entity.Notification
		payload []byte
		errMsg  sql.NullString
		sentAt  sql.NullTime
	)
	if err := s.Scan(&n.ID, &n.Type, &n.Recipient, &payload, &n.Status, &n.LeadID, &errMsg, &n.CreatedAt, &sentAt); err != nil {
		return nil, err
	}
	n.Payload = payload
	n.Error = derefString(errMsg)
	n.SentAt = nullTime(sentAt)
	return &n, nil
}
