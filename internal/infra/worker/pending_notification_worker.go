package worker

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

// Deliverer entrega uma notificação pelo id.
type Deliverer interface {
	Deliver(ctx context.Context, notificationID string) error
}

// PendingNotificationWorker varre notificações que ficaram PENDENTE além da
// janela (evento perdido ou API sem broker) e tenta entregá-las.
type PendingNotificationWorker struct {
	repo         entity.NotificationRepositoryInterface
	deliverer    Deliverer
	staleAfter   time.Duration
	tickInterval time.Duration
	batchSize    int
	now          func() time.Time
}

func NewPendingNotificationWorker(repo entity.NotificationRepositoryInterface, deliverer Deliverer) *PendingNotificationWorker {
	return &PendingNotificationWorker{
		repo:         repo,
		deliverer:    deliverer,
		staleAfter:   5 * time.Minute, // tempo para o consumidor da fila pegar primeiro
		tickInterval: 1 * time.Minute,
		batchSize:    50,
		now:          time.Now,
	}
}

func (w *PendingNotificationWorker) Start(ctx context.Context) {
	log.Printf("🕒 [SWEEPER] Iniciado (janela de %s)", w.staleAfter)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ [SWEEPER] Encerrado")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep devolve quantas notificações foram entregues nesta passada.
func (w *PendingNotificationWorker) Sweep(ctx context.Context) int {
	pending, err := w.repo.ListPending(ctx, w.now().Add(-w.staleAfter), w.batchSize)
	if err != nil {
		log.Printf("❌ [SWEEPER] Erro ao buscar notificações pendentes: %v", err)
		return 0
	}

	delivered := 0
	for _, n := range pending {
		if ctx.Err() != nil {
			break
		}
		if err := w.deliverer.Deliver(ctx, n.ID); err != nil {
			log.Printf("⚠️ [SWEEPER] notificação=%s lead=%s: %v", n.ID, n.LeadID, err)
			continue
		}
		delivered++
	}

	if delivered > 0 {
		log.Printf("✅ [SWEEPER] %d notificação(ões) pendente(s) entregue(s)", delivered)
	}
	return delivered
}
