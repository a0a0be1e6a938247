package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

type PromoterUseCase struct {
	Repo entity.PromoterRepositoryInterface
}

func NewPromoterUseCase(repo entity.PromoterRepositoryInterface) *PromoterUseCase {
	return &PromoterUseCase{Repo: repo}
}

func (uc *PromoterUseCase) Create(ctx context.Context, input CreatePromoterInput) (*entity.Promoter, error) {
	if errs := ValidateCreatePromoterInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	p := entity.NewPromoter(input.Name, NormalizePhone(input.Phone), input.Email)
	if err := uc.Repo.Create(ctx, p); err != nil {
		log.Printf("❌ [PROMOTER] Falha ao criar promotora %q: %v", input.Name, err)
		return nil, persistenceError("falha ao criar promotora", err)
	}
	return p, nil
}

func (uc *PromoterUseCase) List(ctx context.Context) ([]*entity.Promoter, error) {
	promoters, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, lookupError("list_promoters", "", err)
	}
	return promoters, nil
}
