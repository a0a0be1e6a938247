package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

// DeliverNotificationUseCase é usado pelo notifier: entrega notificações
// PENDENTE pela promotora/canal e registra ENVIADO ou FALHOU.
type DeliverNotificationUseCase struct {
	NotificationRepo entity.NotificationRepositoryInterface
	PromoterRepo     entity.PromoterRepositoryInterface
	Transport        MessageTransport
	EmailService     EmailService
	Now              func() time.Time
}

func NewDeliverNotificationUseCase(
	notificationRepo entity.NotificationRepositoryInterface,
	promoterRepo entity.PromoterRepositoryInterface,
	transport MessageTransport,
	emailService EmailService,
) *DeliverNotificationUseCase {
	return &DeliverNotificationUseCase{
		NotificationRepo: notificationRepo,
		PromoterRepo:     promoterRepo,
		Transport:        transport,
		EmailService:     emailService,
		Now:              time.Now,
	}
}

// Deliver é idempotente: notificações que já saíram de PENDENTE são ignoradas.
func (uc *DeliverNotificationUseCase) Deliver(ctx context.Context, notificationID string) error {
	n, err := uc.NotificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		return lookupError("deliver_notification", notificationID, err)
	}
	if n.Status != entity.NotificationPendente {
		log.Printf("ℹ️ [NOTIFIER] Notificação %s já está %s, ignorando", n.ID, n.Status)
		return nil
	}

	var details entity.LeadDetails
	if err := json.Unmarshal(n.Payload, &details); err != nil {
		return uc.finish(ctx, n, fmt.Errorf("payload inválido: %w", err))
	}

	name, phone, email, err := uc.resolveRecipient(ctx, n.Recipient)
	if err != nil {
		return uc.finish(ctx, n, err)
	}

	switch n.Type {
	case entity.ChannelWhatsApp:
		if uc.Transport == nil {
			return uc.finish(ctx, n, errors.New("whatsapp não configurado"))
		}
		_, err = uc.Transport.SendText(ctx, phone, handoffText(&details))
	default:
		if uc.EmailService == nil {
			return uc.finish(ctx, n, errors.New("email não configurado"))
		}
		if email == "" {
			return uc.finish(ctx, n, fmt.Errorf("destinatário %q sem email", n.Recipient))
		}
		err = uc.EmailService.SendLeadHandoff(email, name, &details)
	}

	return uc.finish(ctx, n, err)
}

// resolveRecipient aceita o id de uma promotora ou um contato literal
// (telefone ou email).
func (uc *DeliverNotificationUseCase) resolveRecipient(ctx context.Context, recipient string) (name, phone, email string, err error) {
	if isValidUUID(recipient) {
		p, err := uc.PromoterRepo.FindByID(ctx, recipient)
		if err != nil {
			return "", "", "", fmt.Errorf("promotora %s: %w", recipient, err)
		}
		return p.Name, p.Phone, p.Email, nil
	}
	if strings.Contains(recipient, "@") {
		return "", "", recipient, nil
	}
	return "", NormalizePhone(recipient), "", nil
}

func (uc *DeliverNotificationUseCase) finish(ctx context.Context, n *entity.Notification, deliveryErr error) error {
	if deliveryErr != nil {
		n.Status = entity.NotificationFalhou
		n.Error = deliveryErr.Error()
		log.Printf("⚠️ [NOTIFIER] Notificação %s (lead=%s) falhou: %v", n.ID, n.LeadID, deliveryErr)
	} else {
		now := uc.Now()
		n.Status = entity.NotificationEnviado
		n.SentAt = &now
	}

	if err := uc.NotificationRepo.UpdateStatus(ctx, n); err != nil {
		return persistenceError("falha ao atualizar notificação", err)
	}
	if deliveryErr != nil {
		return upstreamError("falha na entrega da notificação", deliveryErr)
	}
	return nil
}

func handoffText(d *entity.LeadDetails) string {
	c := d.Consultant
	return fmt.Sprintf(
		"Nova consultora aprovada!\nNome: %s\nTelefone: %s\nEmail: %s\nCidade: %s/%s\nEndereço: %s, %s - %s\nObs: %s",
		c.Name, c.Phone, c.Email, c.City, c.Address.State,
		c.Address.Street, c.Address.Number, c.Address.District,
		d.Lead.Notes,
	)
}
