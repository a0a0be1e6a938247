package usecase

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

// SimulatedFailureMessage é o erro gravado nas falhas simuladas.
const SimulatedFailureMessage = "Falha simulada na entrega da mensagem"

// DeliveryOutcome é o resultado que uma política atribui a uma mensagem pending.
type DeliveryOutcome struct {
	Status            entity.MessageStatus
	ProviderMessageID string
	Error             string
}

// DeliveryPolicy decide o destino de cada mensagem pending no envio de uma
// campanha. Chamada concorrentemente.
type DeliveryPolicy interface {
	Dispatch(ctx context.Context, m *entity.Message) DeliveryOutcome
}

// SimulatedDeliveryPolicy sorteia o status: 10% failed, 20% read,
// 40% delivered e 30% fica em sent.
type SimulatedDeliveryPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedDeliveryPolicy(seed int64) *SimulatedDeliveryPolicy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedDeliveryPolicy{rng: rand.New(rand.NewSource(seed))}
}

func (p *SimulatedDeliveryPolicy) Dispatch(_ context.Context, _ *entity.Message) DeliveryOutcome {
	p.mu.Lock()
	r := p.rng.Float64()
	p.mu.Unlock()

	switch {
	case r < 0.10:
		return DeliveryOutcome{Status: entity.MessageFailed, Error: SimulatedFailureMessage}
	case r < 0.30:
		return DeliveryOutcome{Status: entity.MessageRead}
	case r < 0.70:
		return DeliveryOutcome{Status: entity.MessageDelivered}
	default:
		return DeliveryOutcome{Status: entity.MessageSent}
	}
}

// TransportDeliveryPolicy envia de verdade pelo WhatsApp. delivered/read
// chegam depois pelo webhook de status.
type TransportDeliveryPolicy struct {
	Transport MessageTransport
}

func NewTransportDeliveryPolicy(t MessageTransport) *TransportDeliveryPolicy {
	return &TransportDeliveryPolicy{Transport: t}
}

func (p *TransportDeliveryPolicy) Dispatch(ctx context.Context, m *entity.Message) DeliveryOutcome {
	id, err := p.Transport.SendText(ctx, m.RecipientNumber, m.Body)
	if err != nil {
		return DeliveryOutcome{Status: entity.MessageFailed, Error: err.Error()}
	}
	return DeliveryOutcome{Status: entity.MessageSent, ProviderMessageID: id}
}

func applyOutcome(m *entity.Message, o DeliveryOutcome, at time.Time) error {
	if o.Status == entity.MessageFailed {
		return m.Fail(o.Error, at)
	}
	if err := m.Advance(o.Status, at); err != nil {
		return err
	}
	if o.ProviderMessageID != "" {
		m.ProviderMessageID = o.ProviderMessageID
	}
	return nil
}
