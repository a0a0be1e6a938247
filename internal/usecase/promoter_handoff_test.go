package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/rede-consultoras/internal/entity"
	"github.com/xavierca1/rede-consultoras/internal/infra/memory"
	"github.com/xavierca1/rede-consultoras/internal/infra/queue"
	"github.com/xavierca1/rede-consultoras/internal/usecase"
)

// ============ REPASSE PARA A PROMOTORA ============

// TestSendToPromoterDefaults - sem canal nem destinatário usa EMAIL e a promotora do lead
func TestSendToPromoterDefaults(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	leadID := seedLead(t, store)
	promoter := seedPromoter(t, store)

	_, err := usecase.NewApprovalWorkflowUseCase(store.Leads(), store.Promoters()).
		Approve(ctx, usecase.ApproveLeadInput{LeadID: leadID, PromoterID: promoter.ID})
	require.NoError(t, err)

	mockQueue := new(MockQueueProducer)
	mockQueue.On("PublishNotification", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewPromoterHandoffUseCase(store.Leads(), store.Notifications(), mockQueue, "fallback@example.com")

	n, err := uc.Execute(ctx, usecase.SendToPromoterInput{LeadID: leadID})
	require.NoError(t, err)
	assert.Equal(t, entity.ChannelEmail, n.Type)
	assert.Equal(t, promoter.ID, n.Recipient)
	assert.Equal(t, entity.NotificationPendente, n.Status)

	var snapshot entity.LeadDetails
	require.NoError(t, json.Unmarshal(n.Payload, &snapshot))
	assert.Equal(t, leadID, snapshot.Lead.ID)
	assert.Equal(t, "Ana Paula Souza", snapshot.Consultant.Name)

	mockQueue.AssertCalled(t, "PublishNotification", mock.Anything, queue.NotificationPayload{
		NotificationID: n.ID,
		LeadID:         leadID,
		Channel:        "EMAIL",
		Recipient:      promoter.ID,
	})

	// o repasse não mexe no status do lead
	lead, err := store.Leads().FindByID(ctx, leadID)
	require.NoError(t, err)
	assert.Equal(t, entity.LeadAprovado, lead.Status)
}

// TestSendToPromoterFallbackRecipient - lead sem promotora cai no contato padrão
func TestSendToPromoterFallbackRecipient(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	leadID := seedLead(t, store)

	uc := usecase.NewPromoterHandoffUseCase(store.Leads(), store.Notifications(), nil, "5511900000000")

	n, err := uc.Execute(ctx, usecase.SendToPromoterInput{LeadID: leadID, Channel: "wa"})
	require.NoError(t, err)
	assert.Equal(t, entity.ChannelWhatsApp, n.Type)
	assert.Equal(t, "5511900000000", n.Recipient)

	// sem fila a notificação fica PENDENTE esperando a varredura
	stored, err := store.Notifications().FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationPendente, stored.Status)
}

// TestSendToPromoterExplicitRecipient - destinatário informado ganha da promotora
func TestSendToPromoterExplicitRecipient(t *testing.T) {
	store := memory.NewStore()
	leadID := seedLead(t, store)

	uc := usecase.NewPromoterHandoffUseCase(store.Leads(), store.Notifications(), nil, "fallback@example.com")

	n, err := uc.Execute(context.Background(), usecase.SendToPromoterInput{
		LeadID:    leadID,
		Channel:   "EMAIL",
		Recipient: " outra@example.com ",
	})
	require.NoError(t, err)
	assert.Equal(t, "outra@example.com", n.Recipient)
}

// TestSendToPromoterPublishFailure - falha na fila desfaz a notificação
func TestSendToPromoterPublishFailure(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	leadID := seedLead(t, store)

	mockQueue := new(MockQueueProducer)
	mockQueue.On("PublishNotification", mock.Anything, mock.Anything).Return(errors.New("broker fora do ar"))

	uc := usecase.NewPromoterHandoffUseCase(store.Leads(), store.Notifications(), mockQueue, "fallback@example.com")

	_, err := uc.Execute(ctx, usecase.SendToPromoterInput{LeadID: leadID})
	require.Error(t, err)
	assert.Equal(t, usecase.CodeUpstream, technicalCode(t, err))
	assert.Empty(t, store.Notifications().ListByLead(leadID))
}

// TestSendToPromoterUnknownLead - lead inexistente e id malformado
func TestSendToPromoterUnknownLead(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewPromoterHandoffUseCase(store.Leads(), store.Notifications(), nil, "")

	_, err := uc.Execute(context.Background(), usecase.SendToPromoterInput{LeadID: uuid.NewString()})
	assert.Equal(t, usecase.CodeNotFound, domainCode(t, err))

	_, err = uc.Execute(context.Background(), usecase.SendToPromoterInput{LeadID: "123"})
	assert.Equal(t, usecase.CodeValidation, domainCode(t, err))
}

// ============ ENTREGA DAS NOTIFICAÇÕES ============

func newPendingNotification(t *testing.T, store *memory.Store, channel entity.NotificationChannel, recipient string) *entity.Notification {
	t.Helper()
	leadID := seedLead(t, store)
	details, err := store.Leads().FindDetails(context.Background(), leadID)
	require.NoError(t, err)
	n, err := entity.NewNotification(leadID, channel, recipient, details)
	require.NoError(t, err)
	require.NoError(t, store.Notifications().Create(context.Background(), n))
	return n
}

// TestDeliverNotificationEmail - email para a promotora cadastrada
func TestDeliverNotificationEmail(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	promoter := seedPromoter(t, store)
	n := newPendingNotification(t, store, entity.ChannelEmail, promoter.ID)

	mockEmail := new(MockEmailService)
	mockEmail.On("SendLeadHandoff", "carla@example.com", "Carla Promotora", mock.Anything).Return(nil)

	uc := usecase.NewDeliverNotificationUseCase(store.Notifications(), store.Promoters(), nil, mockEmail)
	sentAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	uc.Now = func() time.Time { return sentAt }

	require.NoError(t, uc.Deliver(ctx, n.ID))

	stored, err := store.Notifications().FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationEnviado, stored.Status)
	require.NotNil(t, stored.SentAt)
	assert.True(t, sentAt.Equal(*stored.SentAt))

	t.Run("segunda entrega é ignorada", func(t *testing.T) {
		require.NoError(t, uc.Deliver(ctx, n.ID))
		mockEmail.AssertNumberOfCalls(t, "SendLeadHandoff", 1)
	})
}

// TestDeliverNotificationWhatsApp - contato literal recebe o texto do repasse
func TestDeliverNotificationWhatsApp(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	n := newPendingNotification(t, store, entity.ChannelWhatsApp, "+55 (11) 90000-0000")

	mockTransport := new(MockTransport)
	mockTransport.On("SendText", mock.Anything, "5511900000000", mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "Ana Paula Souza")
	})).Return("wamid.1", nil)

	uc := usecase.NewDeliverNotificationUseCase(store.Notifications(), store.Promoters(), mockTransport, nil)
	require.NoError(t, uc.Deliver(ctx, n.ID))

	stored, err := store.Notifications().FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationEnviado, stored.Status)
	mockTransport.AssertExpectations(t)
}

// TestDeliverNotificationFailure - falha no envio grava FALHOU com o erro
func TestDeliverNotificationFailure(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	n := newPendingNotification(t, store, entity.ChannelWhatsApp, "11900000000")

	mockTransport := new(MockTransport)
	mockTransport.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("número bloqueado"))

	uc := usecase.NewDeliverNotificationUseCase(store.Notifications(), store.Promoters(), mockTransport, nil)
	err := uc.Deliver(ctx, n.ID)
	require.Error(t, err)
	assert.Equal(t, usecase.CodeUpstream, technicalCode(t, err))

	stored, err := store.Notifications().FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationFalhou, stored.Status)
	assert.Equal(t, "número bloqueado", stored.Error)
	assert.Nil(t, stored.SentAt)
}

// TestDeliverNotificationEmailDisabled - canal EMAIL sem SMTP configurado
func TestDeliverNotificationEmailDisabled(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	n := newPendingNotification(t, store, entity.ChannelEmail, "promo@example.com")

	uc := usecase.NewDeliverNotificationUseCase(store.Notifications(), store.Promoters(), nil, nil)
	require.Error(t, uc.Deliver(ctx, n.ID))

	stored, err := store.Notifications().FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationFalhou, stored.Status)
}
