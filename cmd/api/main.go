package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/rede-consultoras/internal/config"
	"github.com/xavierca1/rede-consultoras/internal/infra/cache"
	"github.com/xavierca1/rede-consultoras/internal/infra/http/handlers"
	metrics "github.com/xavierca1/rede-consultoras/internal/infra/http/middleware"
	"github.com/xavierca1/rede-consultoras/internal/infra/integration/openai"
	"github.com/xavierca1/rede-consultoras/internal/infra/integration/whatsapp"
	"github.com/xavierca1/rede-consultoras/internal/infra/queue"
	"github.com/xavierca1/rede-consultoras/internal/usecase"
)

func main() {
	cfg := config.Load()

	// 1. Repositórios
	db, repos := openRepositories(cfg)
	if db != nil {
		defer db.Close()
	}

	// 2. Fila (opcional)
	var (
		producer usecase.QueueProducerInterface
		amqpConn *amqp.Connection
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("❌ [API] RabbitMQ: %v", err)
		}
		defer rabbitMQ.Close()
		producer = queue.NewProducer(rabbitMQ.Ch)
		amqpConn = rabbitMQ.Conn
	} else {
		log.Println("⚠️ [API] RABBITMQ_URL vazio: repasses ficam PENDENTE sem evento na fila")
	}

	// 3. Integrações
	waClient := whatsapp.NewClient(cfg.WhatsAppBaseURL, cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneID)

	var replier usecase.ReplyGenerator
	if cfg.OpenAIAPIKey != "" {
		replier = openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	rdb := cache.NewRedisClient(cfg.RedisURI)
	var deduper usecase.InboundDeduper
	if rdb != nil {
		defer rdb.Close()
		deduper = cache.NewRedisDeduper(rdb, cfg.DedupeTTL)
	}

	var policy usecase.DeliveryPolicy = usecase.NewSimulatedDeliveryPolicy(cfg.DispatchSeed)
	if cfg.DispatchMode == config.DispatchWhatsApp {
		policy = usecase.NewTransportDeliveryPolicy(waClient)
	}
	log.Printf("📤 [API] Modo de envio de campanhas: %s", cfg.DispatchMode)

	// 4. UseCases
	registerUC := usecase.NewRegisterConsultantUseCase(repos.consultants)
	workflowUC := usecase.NewApprovalWorkflowUseCase(repos.leads, repos.promoters)
	queryUC := usecase.NewLeadQueryUseCase(repos.leads)
	handoffUC := usecase.NewPromoterHandoffUseCase(repos.leads, repos.notifications, producer, cfg.HandoffFallbackContact)
	promoterUC := usecase.NewPromoterUseCase(repos.promoters)
	dispatchUC := usecase.NewCampaignDispatchUseCase(repos.campaigns, repos.messages, repos.consultants, policy, cfg.DispatchConcurrency)
	inboundUC := usecase.NewInboundRecorderUseCase(repos.incoming, repos.messages, replier, waClient, deduper, cfg.ReplyPersona)
	statusUC := usecase.NewDeliveryStatusUseCase(repos.messages)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 5. Handlers
	limiter := handlers.NewRateLimiter(cfg.RegisterRateLimit, cfg.RegisterRateInterval)
	go limiter.Run(ctx)
	leadHandler := handlers.NewLeadHandler(registerUC, workflowUC, queryUC, handoffUC, limiter)
	promoterHandler := handlers.NewPromoterHandler(promoterUC)
	campaignHandler := handlers.NewCampaignHandler(dispatchUC, inboundUC)
	webhookHandler := handlers.NewWebhookHandler(inboundUC, statusUC, cfg.WhatsAppVerifyToken, cfg.WhatsAppOwnNumber, cfg.WhatsAppAppSecret)
	healthHandler := handlers.NewHealthHandler(db, amqpConn, rdb, cfg.WhatsAppAccessToken != "")

	// 6. Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-User-ID"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/consultants", leadHandler.Register)
	r.Route("/leads", func(r chi.Router) {
		r.Get("/", leadHandler.List)
		r.Get("/{id}", leadHandler.Get)
		r.Get("/{id}/history", leadHandler.History)
		r.Post("/{id}/approve", leadHandler.Approve)
		r.Post("/{id}/reject", leadHandler.Reject)
		r.Post("/{id}/send-to-promoter", leadHandler.SendToPromoter)
	})

	r.Post("/promoters", promoterHandler.Create)
	r.Get("/promoters", promoterHandler.List)

	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", campaignHandler.Create)
		r.Get("/", campaignHandler.List)
		r.Get("/{id}", campaignHandler.Get)
		r.Post("/{id}/recipients", campaignHandler.AddRecipients)
		r.Post("/{id}/send", campaignHandler.Send)
	})

	r.Post("/messages", campaignHandler.SendSingle)
	r.Get("/messages/incoming", campaignHandler.ListIncoming)

	r.Get("/webhook/whatsapp", webhookHandler.Verify)
	r.Post("/webhook/whatsapp", webhookHandler.Handle)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🔥 Server Rede de Consultoras rodando na porta %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ [API] %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("🛑 [API] Encerrando...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ [API] Shutdown: %v", err)
	}
}
