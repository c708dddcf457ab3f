package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/middleware"
	"github.com/atinyakov/FinWise/internal/models"
)

// DateLayout is the format of the from/to query parameters.
const DateLayout = "2006-01-02"

// FinanceService defines the finance operations required by
// FinanceHandler. Every call is scoped to the authenticated user.
type FinanceService interface {
	ListTransactions(ctx context.Context, userID string, from, to *time.Time) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, userID string, tx *models.Transaction) error
	UpdateTransaction(ctx context.Context, userID, id string, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error

	ListBudgets(ctx context.Context, userID string) ([]models.Budget, error)
	CreateBudget(ctx context.Context, userID string, b *models.Budget) error
	UpdateBudget(ctx context.Context, userID, id string, b *models.Budget) error
	DeleteBudget(ctx context.Context, userID, id string) error

	ListSavingGoals(ctx context.Context, userID string) ([]models.SavingGoal, error)
	CreateSavingGoal(ctx context.Context, userID string, g *models.SavingGoal) error
	UpdateSavingGoal(ctx context.Context, userID, id string, g *models.SavingGoal) error
	DeleteSavingGoal(ctx context.Context, userID, id string) error
	Contribute(ctx context.Context, userID, id string, amount float64) (*models.SavingGoal, error)

	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	CreateCategory(ctx context.Context, userID string, c *models.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error

	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
}

// FinanceHandler serves transactions, budgets, savings goals, categories
// and notifications.
type FinanceHandler struct {
	Finance FinanceService
	Log     *zap.Logger
}

func userID(r *http.Request) string {
	return middleware.GetUserIDFromContext(r.Context())
}

// parseDay parses a YYYY-MM-DD query parameter. end moves the result to
// the last instant of that day so ranges are inclusive.
func parseDay(v string, end bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return nil, err
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// ListTransactions handles GET /api/transactions[?from=&to=].
func (h *FinanceHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	from, err := parseDay(r.URL.Query().Get("from"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDay(r.URL.Query().Get("to"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}
	out, err := h.Finance.ListTransactions(r.Context(), userID(r), from, to)
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetTransaction handles GET /api/transactions/{id}.
func (h *FinanceHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Finance.GetTransaction(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// CreateTransaction handles POST /api/transactions.
func (h *FinanceHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if !decodeJSON(w, r, &tx) {
		return
	}
	if err := h.Finance.CreateTransaction(r.Context(), userID(r), &tx); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// UpdateTransaction handles PUT /api/transactions/{id}.
func (h *FinanceHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if !decodeJSON(w, r, &tx) {
		return
	}
	if err := h.Finance.UpdateTransaction(r.Context(), userID(r), chi.URLParam(r, "id"), &tx); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}.
func (h *FinanceHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.Finance.DeleteTransaction)
}

func (h *FinanceHandler) remove(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, userID, id string) error) {
	if err := del(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBudgets handles GET /api/budgets.
func (h *FinanceHandler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	out, err := h.Finance.ListBudgets(r.Context(), userID(r))
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateBudget handles POST /api/budgets.
func (h *FinanceHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var b models.Budget
	if !decodeJSON(w, r, &b) {
		return
	}
	if err := h.Finance.CreateBudget(r.Context(), userID(r), &b); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// UpdateBudget handles PUT /api/budgets/{id}.
func (h *FinanceHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	var b models.Budget
	if !decodeJSON(w, r, &b) {
		return
	}
	if err := h.Finance.UpdateBudget(r.Context(), userID(r), chi.URLParam(r, "id"), &b); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// DeleteBudget handles DELETE /api/budgets/{id}.
func (h *FinanceHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.Finance.DeleteBudget)
}

// ListSavingGoals handles GET /api/savings-goals.
func (h *FinanceHandler) ListSavingGoals(w http.ResponseWriter, r *http.Request) {
	out, err := h.Finance.ListSavingGoals(r.Context(), userID(r))
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateSavingGoal handles POST /api/savings-goals.
func (h *FinanceHandler) CreateSavingGoal(w http.ResponseWriter, r *http.Request) {
	var g models.SavingGoal
	if !decodeJSON(w, r, &g) {
		return
	}
	if err := h.Finance.CreateSavingGoal(r.Context(), userID(r), &g); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// UpdateSavingGoal handles PUT /api/savings-goals/{id}.
func (h *FinanceHandler) UpdateSavingGoal(w http.ResponseWriter, r *http.Request) {
	var g models.SavingGoal
	if !decodeJSON(w, r, &g) {
		return
	}
	if err := h.Finance.UpdateSavingGoal(r.Context(), userID(r), chi.URLParam(r, "id"), &g); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// DeleteSavingGoal handles DELETE /api/savings-goals/{id}.
func (h *FinanceHandler) DeleteSavingGoal(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.Finance.DeleteSavingGoal)
}

// Contribute handles POST /api/savings-goals/{id}/contribute.
func (h *FinanceHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.Finance.Contribute(r.Context(), userID(r), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// ListCategories handles GET /api/categories.
func (h *FinanceHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.Finance.ListCategories(r.Context(), userID(r))
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateCategory handles POST /api/categories.
func (h *FinanceHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if !decodeJSON(w, r, &c) {
		return
	}
	if err := h.Finance.CreateCategory(r.Context(), userID(r), &c); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (h *FinanceHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.Finance.DeleteCategory)
}

// ListNotifications handles GET /api/notifications.
func (h *FinanceHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	out, err := h.Finance.ListNotifications(r.Context(), userID(r))
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// MarkNotificationRead handles POST /api/notifications/{id}/read.
func (h *FinanceHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.Finance.MarkNotificationRead)
}
