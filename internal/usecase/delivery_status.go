package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

// DeliveryStatusUseCase aplica os status que o provedor devolve pelo webhook.
type DeliveryStatusUseCase struct {
	MessageRepo entity.MessageRepositoryInterface
	Now         func() time.Time
}

func NewDeliveryStatusUseCase(repo entity.MessageRepositoryInterface) *DeliveryStatusUseCase {
	return &DeliveryStatusUseCase{MessageRepo: repo, Now: time.Now}
}

// Apply nunca faz uma mensagem voltar na cadeia. Status desconhecidos,
// regressões e ids que não são nossos são só registrados no log.
func (uc *DeliveryStatusUseCase) Apply(ctx context.Context, input DeliveryStatusInput) error {
	status := entity.MessageStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if !status.Valid() || status == entity.MessagePending {
		log.Printf("ℹ️ [STATUS] Status %q ignorado para %s", input.Status, input.ProviderMessageID)
		return nil
	}

	m, err := uc.MessageRepo.FindByProviderID(ctx, input.ProviderMessageID)
	if errors.Is(err, entity.ErrMessageNotFound) {
		log.Printf("ℹ️ [STATUS] Mensagem %s desconhecida, ignorando", input.ProviderMessageID)
		return nil
	}
	if err != nil {
		return lookupError("delivery_status", input.ProviderMessageID, err)
	}

	from := m.Status
	at := uc.Now()
	if input.Timestamp > 0 {
		at = time.Unix(input.Timestamp, 0)
	}

	if status == entity.MessageFailed {
		reason := input.Error
		if reason == "" {
			reason = "falha informada pelo provedor"
		}
		err = m.Fail(reason, at)
	} else {
		err = m.Advance(status, at)
	}
	if errors.Is(err, entity.ErrStatusRegression) {
		log.Printf("ℹ️ [STATUS] Mensagem %s: %v", m.ID, err)
		return nil
	}
	if err != nil {
		return newValidationError([]ValidationError{{"status", err.Error()}})
	}

	err = uc.MessageRepo.UpdateStatus(ctx, m, from)
	if errors.Is(err, entity.ErrStatusRegression) {
		log.Printf("ℹ️ [STATUS] Mensagem %s mudou durante a atualização: %v", m.ID, err)
		return nil
	}
	if err != nil {
		log.Printf("❌ [STATUS] Falha ao atualizar mensagem %s: %v", m.ID, err)
		return persistenceError("falha ao atualizar status da mensagem", err)
	}
	return nil
}
