package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

// ApprovalWorkflowUseCase aplica as duas únicas transições de um lead:
// EM_ANALISE → APROVADO e EM_ANALISE → REPROVADO. Cada transição grava o
// novo status e a entrada de histórico na mesma transação.
type ApprovalWorkflowUseCase struct {
	LeadRepo     entity.LeadRepositoryInterface
	PromoterRepo entity.PromoterRepositoryInterface
	Now          func() time.Time
}

func NewApprovalWorkflowUseCase(
	leadRepo entity.LeadRepositoryInterface,
	promoterRepo entity.PromoterRepositoryInterface,
) *ApprovalWorkflowUseCase {
	return &ApprovalWorkflowUseCase{
		LeadRepo:     leadRepo,
		PromoterRepo: promoterRepo,
		Now:          time.Now,
	}
}

func (uc *ApprovalWorkflowUseCase) Approve(ctx context.Context, input ApproveLeadInput) (*entity.Lead, error) {
	if errs := ValidateApproveLeadInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	lead, err := uc.LeadRepo.FindByID(ctx, input.LeadID)
	if err != nil {
		return nil, lookupError("approve", input.LeadID, err)
	}

	if _, err := uc.PromoterRepo.FindByID(ctx, input.PromoterID); err != nil {
		return nil, lookupError("approve", input.PromoterID, err)
	}

	entry, err := lead.Approve(input.ActorUserID, input.PromoterID, input.Notes, uc.Now())
	if err != nil {
		return nil, &DomainError{Code: CodeInvalidTransition, Message: err.Error()}
	}

	if err := uc.commit(ctx, "approve", lead, entry); err != nil {
		return nil, err
	}

	log.Printf("✅ [WORKFLOW] Lead %s APROVADO por %q, promotora %s", lead.ID, input.ActorUserID, input.PromoterID)
	return lead, nil
}

func (uc *ApprovalWorkflowUseCase) Reject(ctx context.Context, input RejectLeadInput) (*entity.Lead, error) {
	if errs := ValidateRejectLeadInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	lead, err := uc.LeadRepo.FindByID(ctx, input.LeadID)
	if err != nil {
		return nil, lookupError("reject", input.LeadID, err)
	}

	rejection := entity.Rejection{
		Reason:     input.Reason,
		DebtAmount: input.DebtAmount,
		Notes:      input.Notes,
	}
	if input.ConsultationDate != "" {
		d, _ := parseDate(input.ConsultationDate)
		rejection.ConsultationDate = &d
	}

	entry, err := lead.Reject(input.ActorUserID, rejection, uc.Now())
	if err != nil {
		return nil, &DomainError{Code: CodeInvalidTransition, Message: err.Error()}
	}

	if err := uc.commit(ctx, "reject", lead, entry); err != nil {
		return nil, err
	}

	log.Printf("🚫 [WORKFLOW] Lead %s REPROVADO por %q: %s", lead.ID, input.ActorUserID, input.Reason)
	return lead, nil
}

func (uc *ApprovalWorkflowUseCase) commit(ctx context.Context, op string, lead *entity.Lead, entry *entity.LeadHistory) error {
	err := uc.LeadRepo.ApplyTransition(ctx, lead, entry)
	if err == nil {
		return nil
	}
	if errors.Is(err, entity.ErrLeadAlreadyDecided) {
		return &DomainError{Code: CodeInvalidTransition, Message: err.Error()}
	}
	if errors.Is(err, entity.ErrLeadNotFound) {
		return notFound(err)
	}
	log.Printf("❌ [WORKFLOW] %s lead=%s: falha ao gravar transição: %v", op, lead.ID, err)
	return persistenceError("falha ao gravar transição do lead", err)
}

// lookupError converte erros de busca: sentinelas de "não encontrado" viram
// NOT_FOUND, o resto vira PERSISTENCE_ERROR.
func lookupError(op, id string, err error) error {
	for _, target := range []error{
		entity.ErrLeadNotFound,
		entity.ErrPromoterNotFound,
		entity.ErrCampaignNotFound,
		entity.ErrConsultantNotFound,
		entity.ErrNotificationNotFound,
		entity.ErrMessageNotFound,
	} {
		if errors.Is(err, target) {
			return notFound(err)
		}
	}
	log.Printf("❌ [%s] id=%s: erro no banco: %v", op, id, err)
	return persistenceError("falha ao consultar o banco", err)
}

type LeadQueryUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
}

func NewLeadQueryUseCase(repo entity.LeadRepositoryInterface) *LeadQueryUseCase {
	return &LeadQueryUseCase{LeadRepo: repo}
}

func (uc *LeadQueryUseCase) Get(ctx context.Context, id string) (*entity.LeadDetails, error) {
	if !isValidUUID(id) {
		return nil, newValidationError([]ValidationError{{"id", "must be a valid id"}})
	}
	details, err := uc.LeadRepo.FindDetails(ctx, id)
	if err != nil {
		return nil, lookupError("get_lead", id, err)
	}
	return details, nil
}

func (uc *LeadQueryUseCase) List(ctx context.Context, status string) ([]*entity.Lead, error) {
	s := entity.LeadStatus(status)
	if status != "" && !s.Valid() {
		return nil, newValidationError([]ValidationError{{"status", "must be EM_ANALISE, APROVADO or REPROVADO"}})
	}
	leads, err := uc.LeadRepo.List(ctx, s)
	if err != nil {
		return nil, lookupError("list_leads", status, err)
	}
	return leads, nil
}

func (uc *LeadQueryUseCase) History(ctx context.Context, leadID string) ([]entity.LeadHistory, error) {
	if !isValidUUID(leadID) {
		return nil, newValidationError([]ValidationError{{"id", "must be a valid id"}})
	}
	if _, err := uc.LeadRepo.FindByID(ctx, leadID); err != nil {
		return nil, lookupError("lead_history", leadID, err)
	}
	entries, err := uc.LeadRepo.History(ctx, leadID)
	if err != nil {
		return nil, lookupError("lead_history", leadID, err)
	}
	return entries, nil
}
