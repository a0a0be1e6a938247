package usecase

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

const (
	DefaultIncomingLimit = 50
	MaxIncomingLimit     = 200
)

// InboundRecorderUseCase grava mensagens recebidas pelo webhook e responde
// automaticamente quando o gerador de respostas devolve algum texto.
type InboundRecorderUseCase struct {
	IncomingRepo entity.IncomingMessageRepositoryInterface
	MessageRepo  entity.MessageRepositoryInterface
	Replier      ReplyGenerator
	Transport    MessageTransport
	Deduper      InboundDeduper
	Persona      string
	Now          func() time.Time
}

func NewInboundRecorderUseCase(
	incomingRepo entity.IncomingMessageRepositoryInterface,
	messageRepo entity.MessageRepositoryInterface,
	replier ReplyGenerator,
	transport MessageTransport,
	deduper InboundDeduper,
	persona string,
) *InboundRecorderUseCase {
	return &InboundRecorderUseCase{
		IncomingRepo: incomingRepo,
		MessageRepo:  messageRepo,
		Replier:      replier,
		Transport:    transport,
		Deduper:      deduper,
		Persona:      persona,
		Now:          time.Now,
	}
}

// Record só devolve erro quando a mensagem recebida não pôde ser gravada.
// Falhas na resposta automática ficam no log.
func (uc *InboundRecorderUseCase) Record(ctx context.Context, input InboundMessageInput) (*entity.IncomingMessage, error) {
	claimed := false
	if uc.Deduper != nil && input.ProviderMessageID != "" {
		first, err := uc.Deduper.FirstSeen(ctx, input.ProviderMessageID)
		if err != nil {
			log.Printf("⚠️ [INBOUND] Dedupe indisponível para %s: %v", input.ProviderMessageID, err)
		} else if !first {
			log.Printf("ℹ️ [INBOUND] Mensagem %s repetida, ignorando", input.ProviderMessageID)
			return nil, nil
		} else {
			claimed = true
		}
	}

	in := entity.NewIncomingMessage(NormalizePhone(input.From), input.Body, input.ProviderMessageID)
	in.ReceivedAt = uc.Now()
	if err := uc.IncomingRepo.Create(ctx, in); err != nil {
		log.Printf("❌ [INBOUND] Falha ao gravar mensagem de %s: %v", in.FromNumber, err)
		// o provedor reenvia depois do 500; a reentrega não pode cair no dedupe
		if claimed {
			if ferr := uc.Deduper.Forget(ctx, input.ProviderMessageID); ferr != nil {
				log.Printf("⚠️ [INBOUND] Falha ao liberar dedupe de %s: %v", input.ProviderMessageID, ferr)
			}
		}
		return nil, persistenceError("falha ao gravar mensagem recebida", err)
	}

	log.Printf("📥 [INBOUND] Mensagem de %s gravada (%s)", in.FromNumber, in.ID)
	uc.reply(ctx, in)
	return in, nil
}

func (uc *InboundRecorderUseCase) reply(ctx context.Context, in *entity.IncomingMessage) {
	if uc.Replier == nil {
		return
	}

	text, err := uc.Replier.GenerateReply(ctx, uc.Persona, in.Body)
	if err != nil {
		log.Printf("⚠️ [INBOUND] Gerador de resposta falhou para %s: %v", in.FromNumber, err)
		return
	}
	if text == "" {
		return
	}

	m := entity.NewMessage(nil, in.FromNumber, "", text)
	now := uc.Now()
	if uc.Transport == nil {
		_ = m.Fail("transporte de WhatsApp não configurado", now)
	} else if id, err := uc.Transport.SendText(ctx, in.FromNumber, text); err != nil {
		log.Printf("⚠️ [INBOUND] Falha ao enviar resposta para %s: %v", in.FromNumber, err)
		_ = m.Fail(err.Error(), now)
	} else {
		_ = m.Advance(entity.MessageSent, now)
		m.ProviderMessageID = id
	}

	if err := uc.MessageRepo.Create(ctx, m); err != nil {
		log.Printf("⚠️ [INBOUND] Falha ao gravar resposta para %s: %v", in.FromNumber, err)
		return
	}
	log.Printf("🤖 [INBOUND] Resposta para %s gravada com status %s", in.FromNumber, m.Status)
}

func (uc *InboundRecorderUseCase) List(ctx context.Context, limit int) ([]*entity.IncomingMessage, error) {
	if limit <= 0 {
		limit = DefaultIncomingLimit
	}
	if limit > MaxIncomingLimit {
		limit = MaxIncomingLimit
	}
	msgs, err := uc.IncomingRepo.List(ctx, limit)
	if err != nil {
		return nil, lookupError("list_incoming", "", err)
	}
	return msgs, nil
}
