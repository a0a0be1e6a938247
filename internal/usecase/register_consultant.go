package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type RegisterConsultantUseCase struct {
	ConsultantRepo entity.ConsultantRepositoryInterface
}

func NewRegisterConsultantUseCase(repo entity.ConsultantRepositoryInterface) *RegisterConsultantUseCase {
	return &RegisterConsultantUseCase{ConsultantRepo: repo}
}

// Execute cadastra a consultora e abre o lead dela em EM_ANALISE.
func (uc *RegisterConsultantUseCase) Execute(ctx context.Context, input RegisterConsultantInput) (*RegisterConsultantOutput, error) {
	if errs := ValidateRegisterConsultantInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	address := entity.Address{
		Street:     input.Street,
		Number:     input.Number,
		Complement: input.Complement,
		District:   input.District,
		City:       input.City,
		State:      input.State,
		ZipCode:    NormalizePhone(input.ZipCode),
	}

	consultant, err := entity.NewConsultant(
		input.Name,
		NormalizePhone(input.CPF),
		NormalizePhone(input.Phone),
		input.Email,
		input.City,
		address,
	)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}

	lead := entity.NewLead(consultant.ID)

	if err := uc.ConsultantRepo.CreateWithLead(ctx, consultant, lead); err != nil {
		if errors.Is(err, entity.ErrConsultantAlreadyExists) {
			return nil, &DomainError{Code: CodeConflict, Message: err.Error()}
		}
		log.Printf("❌ [REGISTER] Falha ao gravar consultora cpf=%s: %v", maskCPF(consultant.CPF), err)
		return nil, persistenceError("falha ao gravar consultora", err)
	}

	log.Printf("📝 [REGISTER] Consultora %s cadastrada, lead %s em análise", consultant.ID, lead.ID)

	return &RegisterConsultantOutput{
		ConsultantID: consultant.ID,
		LeadID:       lead.ID,
		Status:       lead.Status,
		Msg:          "Cadastro recebido! Sua candidatura está em análise.",
	}, nil
}

func maskCPF(cpf string) string {
	if len(cpf) < 4 {
		return "***"
	}
	return "***" + cpf[len(cpf)-4:]
}
