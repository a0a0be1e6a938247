package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/rede-consultoras/internal/infra/http/middleware"
	"github.com/xavierca1/rede-consultoras/internal/usecase"
)

type LeadHandler struct {
	RegisterUC  *usecase.RegisterConsultantUseCase
	WorkflowUC  *usecase.ApprovalWorkflowUseCase
	QueryUC     *usecase.LeadQueryUseCase
	HandoffUC   *usecase.PromoterHandoffUseCase
	rateLimiter *RateLimiter
}

func NewLeadHandler(
	registerUC *usecase.RegisterConsultantUseCase,
	workflowUC *usecase.ApprovalWorkflowUseCase,
	queryUC *usecase.LeadQueryUseCase,
	handoffUC *usecase.PromoterHandoffUseCase,
	limiter *RateLimiter,
) *LeadHandler {
	if limiter == nil {
		limiter = NewRateLimiter(10, time.Minute) // 10 req/min por IP
	}
	return &LeadHandler{
		RegisterUC:  registerUC,
		WorkflowUC:  workflowUC,
		QueryUC:     queryUC,
		HandoffUC:   handoffUC,
		rateLimiter: limiter,
	}
}

// Register (POST /consultants) é a única rota pública, por isso o rate limit.
func (h *LeadHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
		return
	}

	var input usecase.RegisterConsultantInput
	if !decodeJSON(w, r, &input) {
		return
	}

	output, err := h.RegisterUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, output)
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.QueryUC.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	details, err := h.QueryUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *LeadHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.QueryUC.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *LeadHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var input usecase.ApproveLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")
	input.ActorUserID = actorID(r)

	lead, err := h.WorkflowUC.Approve(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.RecordLeadTransition(string(lead.Status))
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var input usecase.RejectLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")
	input.ActorUserID = actorID(r)

	lead, err := h.WorkflowUC.Reject(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.RecordLeadTransition(string(lead.Status))
	writeJSON(w, http.StatusOK, lead)
}

// SendToPromoter aceita corpo vazio: canal EMAIL e destinatário padrão.
func (h *LeadHandler) SendToPromoter(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendToPromoterInput
	if r.ContentLength != 0 && !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")

	n, err := h.HandoffUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.RecordHandoff(string(n.Type))
	writeJSON(w, http.StatusAccepted, n)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.Index(xff, ","); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}

// RateLimiter conta requisições por IP numa janela fixa. A limpeza dos IPs
// parados só roda enquanto Run estiver ativo.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration

	CleanupInterval time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors:        make(map[string]*visitor),
		limit:           limit,
		window:          window,
		CleanupInterval: 10 * time.Minute,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

// Run limpa periodicamente os IPs sem acesso há mais de duas janelas, até
// ctx ser cancelado.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.cleanup(now)
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
}

// Visitors devolve quantos IPs estão sendo acompanhados.
func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}
