package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/atinyakov/FinWise/internal/models"
)

// DateLayout is the format of the from/to query parameters.
const DateLayout = "2006-01-02"

// Transactions lists the user's transactions. Zero from or to leaves that
// side of the range open.
func (c *Client) Transactions(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.Format(DateLayout))
	}
	if !to.IsZero() {
		q.Set("to", to.Format(DateLayout))
	}
	path := "/api/transactions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []models.Transaction
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Transaction fetches one transaction.
func (c *Client) Transaction(ctx context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := c.doJSON(ctx, http.MethodGet, "/api/transactions/"+url.PathEscape(id), nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// CreateTransaction records a transaction.
func (c *Client) CreateTransaction(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.doJSON(ctx, http.MethodPost, "/api/transactions", tx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTransaction replaces a transaction.
func (c *Client) UpdateTransaction(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.doJSON(ctx, http.MethodPut, "/api/transactions/"+url.PathEscape(tx.ID), tx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTransaction removes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil)
}

// Budgets lists budgets.
func (c *Client) Budgets(ctx context.Context) ([]models.Budget, error) {
	var out []models.Budget
	if err := c.doJSON(ctx, http.MethodGet, "/api/budgets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBudget adds a budget.
func (c *Client) CreateBudget(ctx context.Context, b models.Budget) (*models.Budget, error) {
	var out models.Budget
	if err := c.doJSON(ctx, http.MethodPost, "/api/budgets", b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBudget replaces a budget.
func (c *Client) UpdateBudget(ctx context.Context, b models.Budget) (*models.Budget, error) {
	var out models.Budget
	if err := c.doJSON(ctx, http.MethodPut, "/api/budgets/"+url.PathEscape(b.ID), b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBudget removes a budget.
func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/budgets/"+url.PathEscape(id), nil, nil)
}

// SavingGoals lists savings goals.
func (c *Client) SavingGoals(ctx context.Context) ([]models.SavingGoal, error) {
	var out []models.SavingGoal
	if err := c.doJSON(ctx, http.MethodGet, "/api/savings-goals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSavingGoal adds a goal.
func (c *Client) CreateSavingGoal(ctx context.Context, g models.SavingGoal) (*models.SavingGoal, error) {
	var out models.SavingGoal
	if err := c.doJSON(ctx, http.MethodPost, "/api/savings-goals", g, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSavingGoal replaces a goal.
func (c *Client) UpdateSavingGoal(ctx context.Context, g models.SavingGoal) (*models.SavingGoal, error) {
	var out models.SavingGoal
	if err := c.doJSON(ctx, http.MethodPut, "/api/savings-goals/"+url.PathEscape(g.ID), g, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSavingGoal removes a goal.
func (c *Client) DeleteSavingGoal(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/savings-goals/"+url.PathEscape(id), nil, nil)
}

// Contribute adds amount to a goal and returns the updated goal.
func (c *Client) Contribute(ctx context.Context, id string, amount float64) (*models.SavingGoal, error) {
	var out models.SavingGoal
	in := map[string]float64{"amount": amount}
	if err := c.doJSON(ctx, http.MethodPost, "/api/savings-goals/"+url.PathEscape(id)+"/contribute", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories lists categories.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, cat models.Category) (*models.Category, error) {
	var out models.Category
	if err := c.doJSON(ctx, http.MethodPost, "/api/categories", cat, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil)
}

// Notifications lists the user's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	if err := c.doJSON(ctx, http.MethodGet, "/api/notifications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}
