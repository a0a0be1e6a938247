package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/xavierca1/rede-consultoras/internal/entity"
	"github.com/xavierca1/rede-consultoras/internal/infra/queue"
)

const (
	stepCreateNotification  = "create_notification"
	stepPublishNotification = "publish_notification"
)

// PromoterHandoffUseCase empacota lead + consultora numa Notification
// PENDENTE para entrega assíncrona. Não mexe no status do lead, então o
// repasse pode ser refeito independentemente da aprovação.
type PromoterHandoffUseCase struct {
	LeadRepo         entity.LeadRepositoryInterface
	NotificationRepo entity.NotificationRepositoryInterface
	Queue            QueueProducerInterface
	FallbackContact  string
}

func NewPromoterHandoffUseCase(
	leadRepo entity.LeadRepositoryInterface,
	notificationRepo entity.NotificationRepositoryInterface,
	producer QueueProducerInterface,
	fallbackContact string,
) *PromoterHandoffUseCase {
	return &PromoterHandoffUseCase{
		LeadRepo:         leadRepo,
		NotificationRepo: notificationRepo,
		Queue:            producer,
		FallbackContact:  fallbackContact,
	}
}

func (uc *PromoterHandoffUseCase) Execute(ctx context.Context, input SendToPromoterInput) (*entity.Notification, error) {
	if !isValidUUID(input.LeadID) {
		return nil, newValidationError([]ValidationError{{"lead_id", "must be a valid id"}})
	}

	details, err := uc.LeadRepo.FindDetails(ctx, input.LeadID)
	if err != nil {
		return nil, lookupError("send_to_promoter", input.LeadID, err)
	}

	channel := entity.ChannelEmail
	if strings.EqualFold(strings.TrimSpace(input.Channel), string(entity.ChannelWhatsApp)) {
		channel = entity.ChannelWhatsApp
	}

	recipient := strings.TrimSpace(input.Recipient)
	if recipient == "" && details.Lead.PromoterID != nil {
		recipient = *details.Lead.PromoterID
	}
	if recipient == "" {
		recipient = uc.FallbackContact
	}

	notification, err := entity.NewNotification(details.Lead.ID, channel, recipient, details)
	if err != nil {
		return nil, persistenceError("falha ao montar snapshot do lead", err)
	}

	txn := NewTransaction()
	txn.Step(stepCreateNotification,
		func(ctx context.Context) error { return uc.NotificationRepo.Create(ctx, notification) },
		func(ctx context.Context) error { return uc.NotificationRepo.Delete(ctx, notification.ID) },
	)
	if uc.Queue != nil {
		txn.Step(stepPublishNotification, func(ctx context.Context) error {
			return uc.Queue.PublishNotification(ctx, queue.NotificationPayload{
				NotificationID: notification.ID,
				LeadID:         notification.LeadID,
				Channel:        string(notification.Type),
				Recipient:      notification.Recipient,
			})
		}, nil)
	}

	if err := txn.Execute(ctx); err != nil {
		log.Printf("❌ [HANDOFF] lead=%s: %v", details.Lead.ID, err)
		var stepErr *StepError
		if errors.As(err, &stepErr) && stepErr.Step == stepPublishNotification {
			return nil, upstreamError("falha ao enfileirar repasse", err)
		}
		return nil, persistenceError("falha ao gravar notificação", err)
	}

	log.Printf("📨 [HANDOFF] Lead %s repassado via %s para %q (notificação %s)", details.Lead.ID, channel, recipient, notification.ID)
	return notification, nil
}
