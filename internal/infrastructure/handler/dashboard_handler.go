package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/damon-houk/finance-tracker/internal/application/service"
	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/summary"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

//go:embed templates/*.html
var templatesFS embed.FS

var dashboardTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"money": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"joinOrNone": func(items []string) string {
		if len(items) == 0 {
			return "None"
		}
		return strings.Join(items, ", ")
	},
}).ParseFS(templatesFS, "templates/*.html"))

const missingFieldsMessage = "All fields are required!"

// formView holds the values shown in the transaction form. A non-empty ID
// means the form edits that transaction.
type formView struct {
	ID          string
	Amount      string
	Date        string
	Description string
	Category    string
}

// Editing reports whether the form updates an existing transaction
func (f formView) Editing() bool {
	return f.ID != ""
}

type budgetInput struct {
	Category string
	Value    string
}

type dashboardView struct {
	Form         formView
	Categories   []string
	BudgetInputs []budgetInput
	Transactions []entity.Transaction
	Report       summary.Report
	Error        string
}

// DashboardHandler serves the server-rendered dashboard
type DashboardHandler struct {
	transactions *service.TransactionService
	summaries    *service.SummaryService
	logger       logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(transactions *service.TransactionService, summaries *service.SummaryService, log logger.Logger) *DashboardHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &DashboardHandler{
		transactions: transactions,
		summaries:    summaries,
		logger:       log,
	}
}

// Show renders the dashboard. With ?edit={id} the form is prefilled with that transaction.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	var form formView
	status := http.StatusOK
	message := ""

	if id := r.URL.Query().Get("edit"); id != "" {
		tx, err := h.transactions.GetTransaction(r.Context(), id)
		switch {
		case err == nil:
			form = formView{
				ID:          tx.ID,
				Amount:      strconv.FormatFloat(tx.Amount, 'f', -1, 64),
				Date:        tx.Date,
				Description: tx.Description,
				Category:    tx.Category,
			}
		case errors.Is(err, entity.ErrNotFound):
			status = http.StatusNotFound
			message = "That transaction no longer exists."
		default:
			h.logError(r, "Failed to load transaction for editing", err)
			status = http.StatusInternalServerError
			message = "Could not load the transaction."
		}
	}

	h.render(w, r, status, form, message)
}

// SubmitTransaction creates a transaction, or updates one when the form carries an id
func (h *DashboardHandler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, formView{}, "The form could not be read.")
		return
	}

	form := formView{
		ID:          strings.TrimSpace(r.PostForm.Get("id")),
		Amount:      strings.TrimSpace(r.PostForm.Get("amount")),
		Date:        r.PostForm.Get("date"),
		Description: r.PostForm.Get("description"),
		Category:    r.PostForm.Get("category"),
	}

	input, err := form.input()
	if err == nil {
		if form.Editing() {
			_, err = h.transactions.UpdateTransaction(r.Context(), form.ID, input)
		} else {
			_, err = h.transactions.CreateTransaction(r.Context(), input)
		}
	}

	if err != nil {
		var verr *entity.ValidationError
		switch {
		case errors.As(err, &verr) && verr.Reason == entity.ReasonMissingFields:
			h.render(w, r, http.StatusBadRequest, form, missingFieldsMessage)
		case errors.As(err, &verr):
			h.render(w, r, http.StatusBadRequest, form, verr.Error())
		case errors.Is(err, entity.ErrNotFound):
			h.render(w, r, http.StatusNotFound, formView{}, "That transaction no longer exists.")
		default:
			h.logError(r, "Failed to save transaction", err)
			h.render(w, r, http.StatusInternalServerError, form, "Failed to save transaction.")
		}
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteTransaction removes a transaction from the store
func (h *DashboardHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.transactions.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			h.render(w, r, http.StatusNotFound, formView{}, "That transaction no longer exists.")
			return
		}
		h.logError(r, "Failed to delete transaction", err)
		h.render(w, r, http.StatusInternalServerError, formView{}, "Failed to delete transaction.")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SubmitBudgets stores every budget field present in the form. Blank fields are
// skipped. Nothing is stored unless every field is valid.
func (h *DashboardHandler) SubmitBudgets(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, formView{}, "The form could not be read.")
		return
	}

	var budgets []entity.Budget
	for _, category := range entity.Categories {
		raw := strings.TrimSpace(r.PostForm.Get("budget_" + category))
		if raw == "" {
			continue
		}

		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.render(w, r, http.StatusBadRequest, formView{}, fmt.Sprintf("Budget for %s must be a number.", category))
			return
		}

		budget := entity.Budget{Category: category, Amount: amount}
		if err := budget.Validate(); err != nil {
			h.render(w, r, http.StatusBadRequest, formView{}, fmt.Sprintf("Budget for %s is invalid: %v.", category, err))
			return
		}
		budgets = append(budgets, budget)
	}

	for _, budget := range budgets {
		if err := h.summaries.SetBudget(r.Context(), budget); err != nil {
			h.logError(r, "Failed to save budget", err)
			h.render(w, r, http.StatusInternalServerError, formView{}, "Failed to save budgets.")
			return
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// input converts the form into a transaction input. A blank amount is left
// unset so that validation reports it as missing.
func (f formView) input() (entity.TransactionInput, error) {
	in := entity.TransactionInput{
		Date:        f.Date,
		Description: f.Description,
		Category:    f.Category,
	}

	if f.Amount != "" {
		amount, err := strconv.ParseFloat(f.Amount, 64)
		if err != nil {
			return in, &entity.ValidationError{Fields: []string{"amount"}, Reason: "amount must be a number"}
		}
		in.Amount = &amount
	}
	return in, in.Validate()
}

// render loads the transactions and summary and writes the page. A failure to
// load the data is shown on the page instead of an empty list.
func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, status int, form formView, message string) {
	view := dashboardView{
		Form:       form,
		Categories: entity.Categories,
		Error:      message,
	}

	list, err := h.transactions.ListTransactions(r.Context())
	if err == nil {
		var budgets map[string]float64
		view.Transactions = list
		view.Report, budgets, err = h.summaries.Summarize(r.Context(), list)
		view.BudgetInputs = budgetInputs(budgets)
	}
	if err != nil {
		h.logError(r, "Failed to load dashboard data", err)
		view.Transactions = nil
		view.BudgetInputs = budgetInputs(nil)
		view.Error = strings.TrimSpace(message + " Could not load transactions. Please try again later.")
		if status < http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}
	}

	var buf bytes.Buffer
	if err := dashboardTemplates.ExecuteTemplate(&buf, "dashboard", view); err != nil {
		h.logError(r, "Dashboard template execution failed", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func budgetInputs(budgets map[string]float64) []budgetInput {
	inputs := make([]budgetInput, 0, len(entity.Categories))
	for _, category := range entity.Categories {
		in := budgetInput{Category: category}
		if amount, ok := budgets[category]; ok {
			in.Value = strconv.FormatFloat(amount, 'f', -1, 64)
		}
		inputs = append(inputs, in)
	}
	return inputs
}

func (h *DashboardHandler) logError(r *http.Request, msg string, err error) {
	h.logger.Error(msg, map[string]interface{}{
		"request_id": middleware.GetRequestID(r.Context()),
		"path":       r.URL.Path,
		"error":      err.Error(),
	})
}

// RegisterRoutes registers the dashboard routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Show).Methods(http.MethodGet)
	router.HandleFunc("/ui/transactions", h.SubmitTransaction).Methods(http.MethodPost)
	router.HandleFunc("/ui/transactions/{id}/delete", h.DeleteTransaction).Methods(http.MethodPost)
	router.HandleFunc("/ui/budgets", h.SubmitBudgets).Methods(http.MethodPost)

	h.logger.Info("Dashboard routes registered", map[string]interface{}{
		"routes": []string{
			"GET /",
			"POST /ui/transactions",
			"POST /ui/transactions/{id}/delete",
			"POST /ui/budgets",
		},
	})
}
