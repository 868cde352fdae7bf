// Package handler exposes the HTTP API and the dashboard
package handler

import (
	"net/http"

	"github.com/damon-houk/finance-tracker/internal/application/service"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// TransactionHandler handles HTTP requests for transactions
type TransactionHandler struct {
	service *service.TransactionService
	logger  logger.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(service *service.TransactionService, log logger.Logger) *TransactionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &TransactionHandler{
		service: service,
		logger:  log,
	}
}

// ListTransactions handles listing every transaction, most recent first
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	list, err := h.service.ListTransactions(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err, "fetching transactions", requestID)
		return
	}

	resp := TransactionListEnvelope{Data: make([]TransactionResponse, 0, len(list))}
	for i := range list {
		resp.Data = append(resp.Data, newTransactionResponse(&list[i]))
	}

	h.logger.Debug("Transactions listed", map[string]interface{}{
		"request_id": requestID,
		"count":      len(list),
	})

	sendJSON(w, h.logger, http.StatusOK, resp)
}

// CreateTransaction handles the creation of a new transaction
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendServiceError(w, h.logger, err, "adding the transaction", requestID)
		return
	}

	h.logger.Debug("Request parsed", map[string]interface{}{
		"request_id":  requestID,
		"description": req.Description,
		"date":        req.Date,
		"category":    req.Category,
	})

	tx, err := h.service.CreateTransaction(r.Context(), req.toInput())
	if err != nil {
		sendServiceError(w, h.logger, err, "adding the transaction", requestID)
		return
	}

	h.logger.Info("Transaction created successfully", map[string]interface{}{
		"request_id": requestID,
		"id":         tx.ID,
	})

	sendJSON(w, h.logger, http.StatusCreated, TransactionEnvelope{Data: newTransactionResponse(tx)})
}

// GetTransaction handles retrieving a transaction by ID
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	tx, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		sendServiceError(w, h.logger, err, "retrieving the transaction", requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, TransactionEnvelope{Data: newTransactionResponse(tx)})
}

// UpdateTransaction handles replacing the fields of a transaction
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendServiceError(w, h.logger, err, "updating the transaction", requestID)
		return
	}

	tx, err := h.service.UpdateTransaction(r.Context(), id, req.toInput())
	if err != nil {
		sendServiceError(w, h.logger, err, "updating the transaction", requestID)
		return
	}

	h.logger.Info("Transaction updated successfully", map[string]interface{}{
		"request_id": requestID,
		"id":         tx.ID,
	})

	sendJSON(w, h.logger, http.StatusOK, TransactionEnvelope{Data: newTransactionResponse(tx)})
}

// DeleteTransaction handles removing a transaction
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	if err := h.service.DeleteTransaction(r.Context(), id); err != nil {
		sendServiceError(w, h.logger, err, "deleting the transaction", requestID)
		return
	}

	h.logger.Info("Transaction deleted successfully", map[string]interface{}{
		"request_id": requestID,
		"id":         id,
	})

	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes registers the transaction handler routes
func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	router.HandleFunc("/transactions", h.CreateTransaction).Methods(http.MethodPost)
	router.HandleFunc("/transactions/{id}", h.GetTransaction).Methods(http.MethodGet)
	router.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods(http.MethodPut)
	router.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods(http.MethodDelete)

	h.logger.Info("Transaction routes registered", map[string]interface{}{
		"routes": []string{
			"GET /transactions",
			"POST /transactions",
			"GET /transactions/{id}",
			"PUT /transactions/{id}",
			"DELETE /transactions/{id}",
		},
	})
}
