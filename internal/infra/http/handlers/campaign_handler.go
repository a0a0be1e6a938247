package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/rede-consultoras/internal/infra/http/middleware"
	"github.com/xavierca1/rede-consultoras/internal/usecase"
)

type CampaignHandler struct {
	DispatchUC *usecase.CampaignDispatchUseCase
	InboundUC  *usecase.InboundRecorderUseCase
}

func NewCampaignHandler(dispatchUC *usecase.CampaignDispatchUseCase, inboundUC *usecase.InboundRecorderUseCase) *CampaignHandler {
	return &CampaignHandler{DispatchUC: dispatchUC, InboundUC: inboundUC}
}

func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateCampaignInput
	if !decodeJSON(w, r, &input) {
		return
	}

	c, err := h.DispatchUC.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.DispatchUC.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.DispatchUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *CampaignHandler) AddRecipients(w http.ResponseWriter, r *http.Request) {
	var input usecase.AddRecipientsInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.CampaignID = chi.URLParam(r, "id")

	added, err := h.DispatchUC.AddRecipients(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, usecase.AddRecipientsOutput{CampaignID: input.CampaignID, Added: added})
}

func (h *CampaignHandler) Send(w http.ResponseWriter, r *http.Request) {
	result, err := h.DispatchUC.Send(r.Context(), chi.URLParam(r, "id"))
	if result != nil {
		for status, n := range result.ByStatus {
			middleware.RecordDispatch(string(status), n)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SendSingle (POST /messages) devolve 202: a mensagem fica pending.
func (h *CampaignHandler) SendSingle(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendSingleInput
	if !decodeJSON(w, r, &input) {
		return
	}

	m, err := h.DispatchUC.SendSingle(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, m)
}

func (h *CampaignHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	msgs, err := h.InboundUC.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}
