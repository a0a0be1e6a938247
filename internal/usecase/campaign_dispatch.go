package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

const DefaultDispatchConcurrency = 16

type CampaignDispatchUseCase struct {
	CampaignRepo   entity.CampaignRepositoryInterface
	MessageRepo    entity.MessageRepositoryInterface
	ConsultantRepo entity.ConsultantRepositoryInterface
	Policy         DeliveryPolicy
	Concurrency    int
	Now            func() time.Time

	// campanhas com Send em andamento neste processo
	inFlight sync.Map
}

func NewCampaignDispatchUseCase(
	campaignRepo entity.CampaignRepositoryInterface,
	messageRepo entity.MessageRepositoryInterface,
	consultantRepo entity.ConsultantRepositoryInterface,
	policy DeliveryPolicy,
	concurrency int,
) *CampaignDispatchUseCase {
	if concurrency <= 0 {
		concurrency = DefaultDispatchConcurrency
	}
	return &CampaignDispatchUseCase{
		CampaignRepo:   campaignRepo,
		MessageRepo:    messageRepo,
		ConsultantRepo: consultantRepo,
		Policy:         policy,
		Concurrency:    concurrency,
		Now:            time.Now,
	}
}

func (uc *CampaignDispatchUseCase) Create(ctx context.Context, input CreateCampaignInput) (*entity.Campaign, error) {
	if errs := ValidateCreateCampaignInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	c := entity.NewCampaign(input.Name, input.Template)
	if err := uc.CampaignRepo.Create(ctx, c); err != nil {
		log.Printf("❌ [CAMPAIGN] Falha ao criar campanha %q: %v", input.Name, err)
		return nil, persistenceError("falha ao criar campanha", err)
	}
	return c, nil
}

func (uc *CampaignDispatchUseCase) List(ctx context.Context) ([]*entity.Campaign, error) {
	campaigns, err := uc.CampaignRepo.List(ctx)
	if err != nil {
		return nil, lookupError("list_campaigns", "", err)
	}
	return campaigns, nil
}

func (uc *CampaignDispatchUseCase) Get(ctx context.Context, id string) (*CampaignDetail, error) {
	if !isValidUUID(id) {
		return nil, newValidationError([]ValidationError{{"id", "must be a valid id"}})
	}

	c, err := uc.CampaignRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("get_campaign", id, err)
	}
	msgs, err := uc.MessageRepo.FindByCampaign(ctx, id)
	if err != nil {
		return nil, lookupError("get_campaign", id, err)
	}

	stats := make(map[entity.MessageStatus]int)
	for _, m := range msgs {
		stats[m.Status]++
	}
	if msgs == nil {
		msgs = []*entity.Message{}
	}

	return &CampaignDetail{Campaign: c, Messages: msgs, Stats: stats}, nil
}

// AddRecipients gera uma mensagem pending por contato, com {nome} trocado
// pelo primeiro nome.
func (uc *CampaignDispatchUseCase) AddRecipients(ctx context.Context, input AddRecipientsInput) (int, error) {
	if errs := ValidateContactIDs(input.ContactIDs); len(errs) > 0 {
		return 0, newValidationError(errs)
	}
	if !isValidUUID(input.CampaignID) {
		return 0, newValidationError([]ValidationError{{"campaign_id", "must be a valid id"}})
	}

	campaign, err := uc.CampaignRepo.FindByID(ctx, input.CampaignID)
	if err != nil {
		return 0, lookupError("add_recipients", input.CampaignID, err)
	}
	if campaign.Status == entity.CampaignSent {
		return 0, &DomainError{Code: CodeInvalidTransition, Message: entity.ErrCampaignAlreadySent.Error()}
	}

	ids := uniqueIDs(input.ContactIDs)
	contacts, err := uc.ConsultantRepo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, lookupError("add_recipients", input.CampaignID, err)
	}

	byID := make(map[string]*entity.Consultant, len(contacts))
	for _, c := range contacts {
		byID[c.ID] = c
	}

	msgs := make([]*entity.Message, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return 0, notFound(fmt.Errorf("%w: %s", entity.ErrConsultantNotFound, id))
		}
		msgs = append(msgs, entity.NewMessage(&campaign.ID, NormalizePhone(c.Phone), c.Name, campaign.Render(c.Name)))
	}

	if err := uc.MessageRepo.CreateBatch(ctx, msgs); err != nil {
		log.Printf("❌ [CAMPAIGN] add_recipients campanha=%s: %v", campaign.ID, err)
		return 0, persistenceError("falha ao gravar destinatários", err)
	}

	log.Printf("👥 [CAMPAIGN] %d destinatário(s) adicionados à campanha %s", len(msgs), campaign.ID)
	return len(msgs), nil
}

// Send processa todas as mensagens pending da campanha em paralelo, espera
// todas terminarem e só então marca a campanha como sent. Falhas individuais
// de gravação não são desfeitas: entram na contagem Failed e a mensagem
// continua pending. Mensagens que outro envio gravou primeiro entram em
// Skipped. Um segundo Send da mesma campanha no mesmo processo, enquanto o
// primeiro roda, vira CONFLICT.
func (uc *CampaignDispatchUseCase) Send(ctx context.Context, campaignID string) (*DispatchResult, error) {
	if !isValidUUID(campaignID) {
		return nil, newValidationError([]ValidationError{{"campaign_id", "must be a valid id"}})
	}

	campaign, err := uc.CampaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, lookupError("send_campaign", campaignID, err)
	}

	if _, busy := uc.inFlight.LoadOrStore(campaignID, struct{}{}); busy {
		return nil, &DomainError{Code: CodeConflict, Message: "campanha já está sendo enviada"}
	}
	defer uc.inFlight.Delete(campaignID)

	pending, err := uc.MessageRepo.FindPendingByCampaign(ctx, campaignID)
	if err != nil {
		return nil, lookupError("send_campaign", campaignID, err)
	}
	if len(pending) == 0 {
		return nil, &DomainError{Code: CodeNotFound, Message: "nenhuma mensagem pendente para a campanha"}
	}

	log.Printf("🚀 [CAMPAIGN] Enviando campanha %s (%d mensagens)", campaign.ID, len(pending))

	statuses := make([]entity.MessageStatus, len(pending))
	errs := make([]error, len(pending))

	var g errgroup.Group
	g.SetLimit(uc.Concurrency)
	for i, m := range pending {
		g.Go(func() error {
			from := m.Status
			outcome := uc.Policy.Dispatch(ctx, m)
			if err := applyOutcome(m, outcome, uc.Now()); err != nil {
				errs[i] = err
				return nil
			}
			if err := uc.MessageRepo.UpdateStatus(ctx, m, from); err != nil {
				errs[i] = err
				return nil
			}
			statuses[i] = m.Status
			return nil
		})
	}
	g.Wait()

	result := &DispatchResult{
		CampaignID: campaign.ID,
		Total:      len(pending),
		ByStatus:   make(map[entity.MessageStatus]int),
	}
	for i := range pending {
		if errors.Is(errs[i], entity.ErrStatusRegression) {
			// outro envio já tinha processado a mensagem
			result.Skipped++
			log.Printf("ℹ️ [CAMPAIGN] campanha=%s mensagem=%s: %v", campaign.ID, pending[i].ID, errs[i])
			continue
		}
		if errs[i] != nil {
			result.Failed++
			log.Printf("⚠️ [CAMPAIGN] campanha=%s mensagem=%s: %v", campaign.ID, pending[i].ID, errs[i])
			continue
		}
		result.Succeeded++
		result.ByStatus[statuses[i]]++
	}

	if result.Succeeded == 0 && result.Failed > 0 {
		return result, persistenceError("nenhuma mensagem da campanha pôde ser atualizada", firstError(errs))
	}

	if result.Succeeded > 0 && campaign.Status != entity.CampaignSent {
		campaign.MarkSent(uc.Now())
		if err := uc.CampaignRepo.MarkSent(ctx, campaign); err != nil {
			log.Printf("❌ [CAMPAIGN] Falha ao marcar campanha %s como sent: %v", campaign.ID, err)
			return result, persistenceError("falha ao marcar campanha como enviada", err)
		}
	}

	log.Printf("✅ [CAMPAIGN] Campanha %s: %d ok, %d com erro, %d já processadas, %v", campaign.ID, result.Succeeded, result.Failed, result.Skipped, result.ByStatus)
	return result, nil
}

// SendSingle aceita uma mensagem avulsa e devolve ela em pending; o envio em
// si é assíncrono.
func (uc *CampaignDispatchUseCase) SendSingle(ctx context.Context, input SendSingleInput) (*entity.Message, error) {
	if errs := ValidateSendSingleInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	var campaignID *string
	if input.CampaignID != "" {
		c, err := uc.CampaignRepo.FindByID(ctx, input.CampaignID)
		if err != nil {
			return nil, lookupError("send_single", input.CampaignID, err)
		}
		campaignID = &c.ID
	}

	m := entity.NewMessage(campaignID, NormalizePhone(input.To), "", input.Body)
	if err := uc.MessageRepo.Create(ctx, m); err != nil {
		log.Printf("❌ [MESSAGE] Falha ao gravar mensagem para %s: %v", m.RecipientNumber, err)
		return nil, persistenceError("falha ao gravar mensagem", err)
	}
	return m, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil && !errors.Is(err, entity.ErrStatusRegression) {
			return err
		}
	}
	return nil
}
