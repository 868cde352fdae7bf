package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/damon-houk/finance-tracker/internal/application/service"
	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/summary"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SummaryHandler handles HTTP requests for summaries, budgets and health
type SummaryHandler struct {
	service *service.SummaryService
	pinger  Pinger
	backend string
	logger  logger.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(service *service.SummaryService, pinger Pinger, backend string, log logger.Logger) *SummaryHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &SummaryHandler{
		service: service,
		pinger:  pinger,
		backend: backend,
		logger:  log,
	}
}

// GetSummary handles computing the spending summary
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	order, err := summary.ParseMonthOrder(r.URL.Query().Get("month_order"))
	if err != nil {
		sendServiceError(w, h.logger, err, "computing the summary", requestID)
		return
	}

	report, err := h.service.GetSummary(r.Context(), order)
	if err != nil {
		sendServiceError(w, h.logger, err, "computing the summary", requestID)
		return
	}

	h.logger.Debug("Summary computed", map[string]interface{}{
		"request_id":  requestID,
		"month_order": string(order),
		"count":       report.Count,
	})

	sendJSON(w, h.logger, http.StatusOK, SummaryEnvelope{Data: report})
}

// GetBudgets handles listing the budget of every known category
func (h *SummaryHandler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	budgets, err := h.service.GetBudgets(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err, "fetching budgets", requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, BudgetsEnvelope{Data: budgets})
}

// SetBudget handles setting the budget of one category
func (h *SummaryHandler) SetBudget(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	category := mux.Vars(r)["category"]

	var req BudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendServiceError(w, h.logger, err, "setting the budget", requestID)
		return
	}
	if req.Amount == nil {
		sendServiceError(w, h.logger, &entity.ValidationError{
			Fields: []string{"amount"},
			Reason: entity.ReasonMissingFields,
		}, "setting the budget", requestID)
		return
	}

	budget := entity.Budget{Category: category, Amount: *req.Amount}
	if err := h.service.SetBudget(r.Context(), budget); err != nil {
		sendServiceError(w, h.logger, err, "setting the budget", requestID)
		return
	}

	h.logger.Info("Budget updated", map[string]interface{}{
		"request_id": requestID,
		"category":   category,
		"amount":     budget.Amount,
	})

	sendJSON(w, h.logger, http.StatusOK, BudgetEnvelope{Data: budget})
}

// Health handles the liveness probe, checking the store connection
func (h *SummaryHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", map[string]interface{}{
			"request_id": middleware.GetRequestID(r.Context()),
			"error":      err.Error(),
		})
		sendJSON(w, h.logger, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Backend: h.backend})
		return
	}

	sendJSON(w, h.logger, http.StatusOK, HealthResponse{Status: "ok", Backend: h.backend})
}

// RegisterRoutes registers the summary handler routes
func (h *SummaryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/summary", h.GetSummary).Methods(http.MethodGet)
	router.HandleFunc("/budgets", h.GetBudgets).Methods(http.MethodGet)
	router.HandleFunc("/budgets/{category}", h.SetBudget).Methods(http.MethodPut)
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	h.logger.Info("Summary routes registered", map[string]interface{}{
		"routes": []string{
			"GET /summary",
			"GET /budgets",
			"PUT /budgets/{category}",
			"GET /healthz",
		},
	})
}
