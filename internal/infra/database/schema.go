package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS consultant (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		cpf TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL,
		email TEXT,
		city TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS address (
		consultant_id UUID PRIMARY KEY REFERENCES consultant(id),
		street TEXT,
		number TEXT,
		complement TEXT,
		district TEXT,
		city TEXT,
		state TEXT,
		zip_code TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS promoters (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lead (
		id UUID PRIMARY KEY,
		consultant_id UUID NOT NULL REFERENCES consultant(id),
		status TEXT NOT NULL CHECK (status IN ('EM_ANALISE', 'APROVADO', 'REPROVADO')),
		promoter_id UUID REFERENCES promoters(id),
		rejection_reason TEXT,
		debt_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		consultation_date DATE,
		notes TEXT,
		forwarded_at TIMESTAMPTZ,
		reviewed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS "leadHistory" (
		id UUID PRIMARY KEY,
		lead_id UUID NOT NULL REFERENCES lead(id),
		actor_user_id TEXT NOT NULL,
		from_status TEXT NOT NULL,
		to_status TEXT NOT NULL,
		reason TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lead_history_lead ON "leadHistory" (lead_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS notification (
		id UUID PRIMARY KEY,
		type TEXT NOT NULL,
		recipient TEXT NOT NULL,
		payload JSONB NOT NULL,
		status TEXT NOT NULL,
		lead_id UUID NOT NULL REFERENCES lead(id),
		error TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		sent_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS whatsapp_campaigns (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		message_template TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMPTZ NOT NULL,
		sent_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS whatsapp_messages (
		id UUID PRIMARY KEY,
		campaign_id UUID REFERENCES whatsapp_campaigns(id),
		recipient_number TEXT NOT NULL,
		recipient_name TEXT,
		message_body TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		provider_message_id TEXT,
		error_message TEXT,
		sent_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		read_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_campaign ON whatsapp_messages (campaign_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_provider ON whatsapp_messages (provider_message_id)`,
	`CREATE TABLE IF NOT EXISTS whatsapp_incoming_messages (
		id UUID PRIMARY KEY,
		from_number TEXT NOT NULL,
		body TEXT NOT NULL,
		provider_message_id TEXT,
		received_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate cria as tabelas que ainda não existem. Pode rodar a cada boot.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate passo %d: %w", i, err)
		}
	}
	log.Printf("✅ [DB] Schema conferido (%d comandos)", len(schema))
	return nil
}
