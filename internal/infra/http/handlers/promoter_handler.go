package handlers

import (
	"net/http"

	"github.com/xavierca1/rede-consultoras/internal/usecase"
)

type PromoterHandler struct {
	UC *usecase.PromoterUseCase
}

func NewPromoterHandler(uc *usecase.PromoterUseCase) *PromoterHandler {
	return &PromoterHandler{UC: uc}
}

func (h *PromoterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreatePromoterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	p, err := h.UC.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PromoterHandler) List(w http.ResponseWriter, r *http.Request) {
	promoters, err := h.UC.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, promoters)
}
