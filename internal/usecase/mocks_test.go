package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/rede-consultoras/internal/entity"
	"github.com/xavierca1/rede-consultoras/internal/infra/memory"
	"github.com/xavierca1/rede-consultoras/internal/infra/queue"
	"github.com/xavierca1/rede-consultoras/internal/usecase"
)

// ============ MOCKS ============

type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishNotification(ctx context.Context, payload queue.NotificationPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) SendText(ctx context.Context, to, body string) (string, error) {
	args := m.Called(ctx, to, body)
	return args.String(0), args.Error(1)
}

type MockReplier struct {
	mock.Mock
}

func (m *MockReplier) GenerateReply(ctx context.Context, systemPrompt, userText string) (string, error) {
	args := m.Called(ctx, systemPrompt, userText)
	return args.String(0), args.Error(1)
}

type MockDeduper struct {
	mock.Mock
}

func (m *MockDeduper) FirstSeen(ctx context.Context, providerMessageID string) (bool, error) {
	args := m.Called(ctx, providerMessageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeduper) Forget(ctx context.Context, providerMessageID string) error {
	args := m.Called(ctx, providerMessageID)
	return args.Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendLeadHandoff(to, promoterName string, details *entity.LeadDetails) error {
	args := m.Called(to, promoterName, details)
	return args.Error(0)
}

// ============ HELPERS ============

func validRegisterInput() usecase.RegisterConsultantInput {
	return usecase.RegisterConsultantInput{
		Name:     "Ana Paula Souza",
		CPF:      "529.982.247-25",
		Phone:    "(11) 99999-9999",
		Email:    "ana@example.com",
		City:     "São Paulo",
		Street:   "Rua das Flores",
		Number:   "100",
		District: "Centro",
		State:    "SP",
		ZipCode:  "01310-100",
	}
}

// seedLead cadastra uma consultora e devolve o id do lead em EM_ANALISE.
func seedLead(t *testing.T, store *memory.Store) string {
	t.Helper()
	out, err := usecase.NewRegisterConsultantUseCase(store.Consultants()).
		Execute(context.Background(), validRegisterInput())
	require.NoError(t, err)
	return out.LeadID
}

func seedPromoter(t *testing.T, store *memory.Store) *entity.Promoter {
	t.Helper()
	p := entity.NewPromoter("Carla Promotora", "11988887777", "carla@example.com")
	require.NoError(t, store.Promoters().Create(context.Background(), p))
	return p
}

func seedContact(t *testing.T, store *memory.Store, name, cpf, phone string) *entity.Consultant {
	t.Helper()
	c, err := entity.NewConsultant(name, cpf, phone, "", "São Paulo", entity.Address{
		Street: "Rua A", Number: "1", City: "São Paulo", State: "SP", ZipCode: "01310100",
	})
	require.NoError(t, err)
	require.NoError(t, store.Consultants().CreateWithLead(context.Background(), c, entity.NewLead(c.ID)))
	return c
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func technicalCode(t *testing.T, err error) string {
	t.Helper()
	var te *usecase.TechnicalError
	require.ErrorAs(t, err, &te)
	return te.Code
}
