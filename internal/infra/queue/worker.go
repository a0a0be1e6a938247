package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationDeliverer entrega uma notificação já gravada no banco.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, notificationID string) error
}

type Worker struct {
	Channel   *amqp.Channel
	Deliverer NotificationDeliverer
}

func NewWorker(ch *amqp.Channel, deliverer NotificationDeliverer) *Worker {
	return &Worker{
		Channel:   ch,
		Deliverer: deliverer,
	}
}

// Start consome a fila até o contexto ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual é mais seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Printf(" [*] [WORKER] Aguardando notificações na fila '%s'", queueName)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ [WORKER] Encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de consumo fechado")
			}
			w.Handle(ctx, d)
		}
	}
}

// Acknowledger é o subconjunto de amqp.Delivery usado pelo worker.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	w.process(ctx, d.Body, &d)
}

func (w *Worker) process(ctx context.Context, body []byte, ack Acknowledger) {
	var payload NotificationPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("❌ [WORKER] JSON inválido: %s", err)
		// Mensagem malformada: rejeita sem requeue para não travar a fila.
		ack.Nack(false, false)
		return
	}

	log.Printf("⚙️ [WORKER] Entregando notificação %s (lead=%s canal=%s)", payload.NotificationID, payload.LeadID, payload.Channel)

	if err := w.Deliverer.Deliver(ctx, payload.NotificationID); err != nil {
		log.Printf("❌ [WORKER] Falha na entrega %s: %s", payload.NotificationID, err)
		ack.Nack(false, false)
		return
	}

	log.Printf("✅ [WORKER] Notificação %s entregue", payload.NotificationID)
	ack.Ack(false)
}
