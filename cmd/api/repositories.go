package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/xavierca1/rede-consultoras/internal/config"
	"github.com/xavierca1/rede-consultoras/internal/entity"
	"github.com/xavierca1/rede-consultoras/internal/infra/database"
	"github.com/xavierca1/rede-consultoras/internal/infra/memory"
)

type repositories struct {
	consultants   entity.ConsultantRepositoryInterface
	leads         entity.LeadRepositoryInterface
	promoters     entity.PromoterRepositoryInterface
	notifications entity.NotificationRepositoryInterface
	campaigns     entity.CampaignRepositoryInterface
	messages      entity.MessageRepositoryInterface
	incoming      entity.IncomingMessageRepositoryInterface
}

// openRepositories usa o Postgres quando DATABASE_URL está definido. Sem ele
// a API sobe com o store em memória (dados somem ao reiniciar).
func openRepositories(cfg *config.Config) (*sql.DB, repositories) {
	if cfg.DatabaseURL == "" {
		log.Println("⚠️ [API] DATABASE_URL vazio: usando store em memória")
		store := memory.NewStore()
		return nil, repositories{
			consultants:   store.Consultants(),
			leads:         store.Leads(),
			promoters:     store.Promoters(),
			notifications: store.Notifications(),
			campaigns:     store.Campaigns(),
			messages:      store.Messages(),
			incoming:      store.Incoming(),
		}
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ [API] Banco: %v", err)
	}

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("❌ [API] Migração: %v", err)
		}
	}

	return db, repositories{
		consultants:   database.NewConsultantRepository(db),
		leads:         database.NewLeadRepository(db),
		promoters:     database.NewPromoterRepository(db),
		notifications: database.NewNotificationRepository(db),
		campaigns:     database.NewCampaignRepository(db),
		messages:      database.NewMessageRepository(db),
		incoming:      database.NewIncomingMessageRepository(db),
	}
}
