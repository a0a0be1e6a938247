package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, notificationID string) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}

func payloadBody(t *testing.T, id string) []byte {
	t.Helper()
	body, err := json.Marshal(NotificationPayload{NotificationID: id, LeadID: "lead-1", Channel: "EMAIL", Recipient: "promo@example.com"})
	require.NoError(t, err)
	return body
}

// TestWorkerAcksDelivered - entrega ok confirma a mensagem
func TestWorkerAcksDelivered(t *testing.T) {
	deliverer := new(MockDeliverer)
	deliverer.On("Deliver", mock.Anything, "notif-1").Return(nil)

	ack := &fakeAck{}
	NewWorker(nil, deliverer).process(context.Background(), payloadBody(t, "notif-1"), ack)

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	deliverer.AssertExpectations(t)
}

// TestWorkerNacksFailedDelivery - falha vai para a DLQ sem requeue
func TestWorkerNacksFailedDelivery(t *testing.T) {
	deliverer := new(MockDeliverer)
	deliverer.On("Deliver", mock.Anything, "notif-2").Return(errors.New("smtp fora"))

	ack := &fakeAck{}
	NewWorker(nil, deliverer).process(context.Background(), payloadBody(t, "notif-2"), ack)

	assert.False(t, ack.acked)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

// TestWorkerRejectsInvalidJSON - corpo malformado nem chega ao entregador
func TestWorkerRejectsInvalidJSON(t *testing.T) {
	deliverer := new(MockDeliverer)

	ack := &fakeAck{}
	NewWorker(nil, deliverer).process(context.Background(), []byte("{"), ack)

	assert.True(t, ack.nacked)
	deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

// TestNotificationPayloadJSON - nomes dos campos no evento
func TestNotificationPayloadJSON(t *testing.T) {
	var fields map[string]string
	require.NoError(t, json.Unmarshal(payloadBody(t, "notif-3"), &fields))

	assert.Equal(t, "notif-3", fields["notification_id"])
	assert.Equal(t, "lead-1", fields["lead_id"])
	assert.Equal(t, "EMAIL", fields["channel"])
	assert.Equal(t, "promo@example.com", fields["recipient"])
}
