package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	l.id, l.consultant_id, l.status, l.promoter_id, l.rejection_reason, l.debt_amount,
	l.consultation_date, l.notes, l.forwarded_at, l.reviewed_at, l.created_at, l.updated_at`

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM lead l WHERE l.id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return l, err
}

func (r *LeadRepository) FindDetails(ctx context.Context, id string) (*entity.LeadDetails, error) {
	lead, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	row := r.DB.QueryRowContext(ctx, `
		SELECT `+consultantColumns+`
		FROM consultant c
		LEFT JOIN address a ON a.consultant_id = c.id
		WHERE c.id = $1`, lead.ConsultantID)
	c, err := scanConsultant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lead %s: %w", id, entity.ErrConsultantNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &entity.LeadDetails{Lead: *lead, Consultant: *c}, nil
}

func (r *LeadRepository) List(ctx context.Context, status entity.LeadStatus) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM lead l`
	var args []any
	if status != "" {
		query += ` WHERE l.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY l.created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*entity.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

func (r *LeadRepository) History(ctx context.Context, leadID string) ([]entity.LeadHistory, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, lead_id, actor_user_id, from_status, to_status, reason, created_at
		FROM "leadHistory"
		WHERE lead_id = $1
		ORDER BY created_at ASC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []entity.LeadHistory
	for rows.Next() {
		var (
			h      entity.LeadHistory
			reason sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.LeadID, &h.ActorUserID, &h.FromStatus, &h.ToStatus, &reason, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.Reason = derefString(reason)
		res = append(res, h)
	}
	return res, rows.Err()
}

// ApplyTransition só atualiza se o status no banco ainda for o de origem da
// entrada; assim duas decisões concorrentes não ganham as duas.
func (r *LeadRepository) ApplyTransition(ctx context.Context, lead *entity.Lead, entry *entity.LeadHistory) error {
	return inTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE lead SET
				status = $2,
				promoter_id = $3,
				rejection_reason = $4,
				debt_amount = $5,
				consultation_date = $6,
				notes = $7,
				forwarded_at = $8,
				reviewed_at = $9,
				updated_at = $10
			WHERE id = $1 AND status = $11`,
			lead.ID, lead.Status, lead.PromoterID, nullString(lead.RejectionReason), lead.DebtAmount,
			lead.ConsultationDate, nullString(lead.Notes), lead.ForwardedAt, lead.ReviewedAt, lead.UpdatedAt,
			entry.FromStatus,
		)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var current entity.LeadStatus
			err := tx.QueryRowContext(ctx, `SELECT status FROM lead WHERE id = $1`, lead.ID).Scan(&current)
			if errors.Is(err, sql.ErrNoRows) {
				return entity.ErrLeadNotFound
			}
			if err != nil {
				return err
			}
			return fmt.Errorf("%w: status atual %s", entity.ErrLeadAlreadyDecided, current)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO "leadHistory" (id, lead_id, actor_user_id, from_status, to_status, reason, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			entry.ID, entry.LeadID, entry.ActorUserID, entry.FromStatus, entry.ToStatus, nullString(entry.Reason), entry.CreatedAt,
		)
		return err
	})
}

func scanLead(s scanner) (*entity.Lead, error) {
	var (
		l                       entity.Lead
		promoterID              sql.NullString
		reason, notes           sql.NullString
		consultation            sql.NullTime
		forwardedAt, reviewedAt sql.NullTime
	)
	err := s.Scan(
		&l.ID, &l.ConsultantID, &l.Status, &promoterID, &reason, &l.DebtAmount,
		&consultation, &notes, &forwardedAt, &reviewedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if promoterID.Valid {
		l.PromoterID = &promoterID.String
	}
	l.RejectionReason = derefString(reason)
	l.Notes = derefString(notes)
	l.ConsultationDate = nullTime(consultation)
	l.ForwardedAt = nullTime(forwardedAt)
	l.ReviewedAt = nullTime(reviewedAt)
	return &l, nil
}
