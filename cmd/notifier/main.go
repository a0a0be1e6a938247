package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/xavierca1/rede-consultoras/internal/config"
	"github.com/xavierca1/rede-consultoras/internal/infra/database"
	"github.com/xavierca1/rede-consultoras/internal/infra/integration/whatsapp"
	"github.com/xavierca1/rede-consultoras/internal/infra/mail"
	"github.com/xavierca1/rede-consultoras/internal/infra/queue"
	"github.com/xavierca1/rede-consultoras/internal/infra/worker"
	"github.com/xavierca1/rede-consultoras/internal/usecase"
)

// notifier entrega os repasses de leads às promotoras: consome a fila e,
// em paralelo, varre notificações PENDENTE esquecidas.
func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("❌ [NOTIFIER] DATABASE_URL é obrigatório")
	}
	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ [NOTIFIER] Banco: %v", err)
	}
	defer db.Close()

	notificationRepo := database.NewNotificationRepository(db)
	promoterRepo := database.NewPromoterRepository(db)

	var emailService usecase.EmailService
	if cfg.MailHost != "" {
		emailService = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword, cfg.MailFrom)
	} else {
		log.Println("⚠️ [NOTIFIER] MAIL_HOST vazio: canal EMAIL desativado")
	}
	waClient := whatsapp.NewClient(cfg.WhatsAppBaseURL, cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneID)

	deliverUC := usecase.NewDeliverNotificationUseCase(notificationRepo, promoterRepo, waClient, emailService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := worker.NewPendingNotificationWorker(notificationRepo, deliverUC)
	go sweeper.Start(ctx)

	if cfg.RabbitMQURL == "" {
		log.Println("⚠️ [NOTIFIER] RABBITMQ_URL vazio: apenas a varredura de pendentes está ativa")
		<-ctx.Done()
		return
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("❌ [NOTIFIER] RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	consumer := queue.NewWorker(rabbitMQ.Ch, deliverUC)
	if err := consumer.Start(ctx, queue.QueueName); err != nil {
		log.Printf("❌ [NOTIFIER] %v", err)
	}
}
