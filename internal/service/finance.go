package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atinyakov/FinWise/internal/models"
	"github.com/atinyakov/FinWise/internal/receipts"
)

// FinanceRepository defines the persistence operations needed by
// FinanceService. Every method is scoped to a user.
type FinanceRepository interface {
	ListTransactions(ctx context.Context, userID string, from, to *time.Time) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error

	ListBudgets(ctx context.Context, userID string) ([]models.Budget, error)
	CreateBudget(ctx context.Context, b *models.Budget) error
	UpdateBudget(ctx context.Context, b *models.Budget) error
	DeleteBudget(ctx context.Context, userID, id string) error

	ListSavingGoals(ctx context.Context, userID string) ([]models.SavingGoal, error)
	CreateSavingGoal(ctx context.Context, g *models.SavingGoal) error
	UpdateSavingGoal(ctx context.Context, g *models.SavingGoal) error
	DeleteSavingGoal(ctx context.Context, userID, id string) error
	AddToSavingGoal(ctx context.Context, userID, id string, amount float64) (*models.SavingGoal, error)

	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error

	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
	MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int64, error)
}

// FinanceService validates and stores a user's finance records.
type FinanceService struct {
	repo FinanceRepository
	now  func() time.Time
}

// NewFinanceService constructs a FinanceService.
func NewFinanceService(repo FinanceRepository) *FinanceService {
	return &FinanceService{repo: repo, now: time.Now}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{models.ErrInvalidInput}, args...)...)
}

func (s *FinanceService) checkTransaction(userID string, tx *models.Transaction) error {
	if tx.Amount <= 0 {
		return invalid("amount must be positive")
	}
	if !tx.Type.Valid() {
		return invalid("type must be %q or %q", models.Income, models.Expense)
	}
	tx.Category = strings.TrimSpace(tx.Category)
	if tx.Category == "" {
		return invalid("category is required")
	}
	if tx.ReceiptKey != "" && !receipts.OwnedBy(tx.ReceiptKey, userID) {
		return invalid("unknown receipt")
	}
	if tx.Date.IsZero() {
		tx.Date = s.now().UTC()
	}
	return nil
}

// ListTransactions returns the user's transactions, optionally limited to
// the inclusive date range [from, to].
func (s *FinanceService) ListTransactions(ctx context.Context, userID string, from, to *time.Time) ([]models.Transaction, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, invalid("to is before from")
	}
	return s.repo.ListTransactions(ctx, userID, from, to)
}

// GetTransaction returns one transaction.
func (s *FinanceService) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

// CreateTransaction validates tx, assigns it an ID and stores it.
func (s *FinanceService) CreateTransaction(ctx context.Context, userID string, tx *models.Transaction) error {
	if err := s.checkTransaction(userID, tx); err != nil {
		return err
	}
	tx.ID = uuid.NewString()
	tx.UserID = userID
	return s.repo.CreateTransaction(ctx, tx)
}

// UpdateTransaction replaces transaction id with tx.
func (s *FinanceService) UpdateTransaction(ctx context.Context, userID, id string, tx *models.Transaction) error {
	if err := s.checkTransaction(userID, tx); err != nil {
		return err
	}
	tx.ID = id
	tx.UserID = userID
	return s.repo.UpdateTransaction(ctx, tx)
}

// DeleteTransaction removes a transaction.
func (s *FinanceService) DeleteTransaction(ctx context.Context, userID, id string) error {
	return s.repo.DeleteTransaction(ctx, userID, id)
}

func (s *FinanceService) checkBudget(b *models.Budget) error {
	if b.Amount <= 0 {
		return invalid("amount must be positive")
	}
	b.Category = strings.TrimSpace(b.Category)
	if b.Category == "" {
		return invalid("category is required")
	}
	switch b.Period {
	case models.PeriodWeekly, models.PeriodMonthly, models.PeriodYearly:
	case "":
		b.Period = models.PeriodMonthly
	default:
		return invalid("unknown period %q", b.Period)
	}
	if b.StartDate.IsZero() {
		b.StartDate = s.now().UTC()
	}
	return nil
}

// ListBudgets returns the user's budgets.
func (s *FinanceService) ListBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	return s.repo.ListBudgets(ctx, userID)
}

// CreateBudget validates and stores b. The period defaults to monthly.
func (s *FinanceService) CreateBudget(ctx context.Context, userID string, b *models.Budget) error {
	if err := s.checkBudget(b); err != nil {
		return err
	}
	b.ID = uuid.NewString()
	b.UserID = userID
	return s.repo.CreateBudget(ctx, b)
}

// UpdateBudget replaces budget id with b.
func (s *FinanceService) UpdateBudget(ctx context.Context, userID, id string, b *models.Budget) error {
	if err := s.checkBudget(b); err != nil {
		return err
	}
	b.ID = id
	b.UserID = userID
	return s.repo.UpdateBudget(ctx, b)
}

// DeleteBudget removes a budget.
func (s *FinanceService) DeleteBudget(ctx context.Context, userID, id string) error {
	return s.repo.DeleteBudget(ctx, userID, id)
}

func checkGoal(g *models.SavingGoal) error {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return invalid("name is required")
	}
	if g.TargetAmount <= 0 {
		return invalid("targetAmount must be positive")
	}
	if g.CurrentAmount < 0 {
		return invalid("currentAmount must not be negative")
	}
	return nil
}

// ListSavingGoals returns the user's goals.
func (s *FinanceService) ListSavingGoals(ctx context.Context, userID string) ([]models.SavingGoal, error) {
	return s.repo.ListSavingGoals(ctx, userID)
}

// CreateSavingGoal validates and stores g.
func (s *FinanceService) CreateSavingGoal(ctx context.Context, userID string, g *models.SavingGoal) error {
	if err := checkGoal(g); err != nil {
		return err
	}
	g.ID = uuid.NewString()
	g.UserID = userID
	g.CreatedAt = s.now().UTC()
	return s.repo.CreateSavingGoal(ctx, g)
}

// UpdateSavingGoal replaces goal id with g.
func (s *FinanceService) UpdateSavingGoal(ctx context.Context, userID, id string, g *models.SavingGoal) error {
	if err := checkGoal(g); err != nil {
		return err
	}
	g.ID = id
	g.UserID = userID
	return s.repo.UpdateSavingGoal(ctx, g)
}

// DeleteSavingGoal removes a goal.
func (s *FinanceService) DeleteSavingGoal(ctx context.Context, userID, id string) error {
	return s.repo.DeleteSavingGoal(ctx, userID, id)
}

// Contribute adds amount to a goal. Reaching the target posts a
// notification to the user.
func (s *FinanceService) Contribute(ctx context.Context, userID, id string, amount float64) (*models.SavingGoal, error) {
	if amount <= 0 {
		return nil, invalid("amount must be positive")
	}
	g, err := s.repo.AddToSavingGoal(ctx, userID, id, amount)
	if err != nil {
		return nil, err
	}
	if g.CurrentAmount >= g.TargetAmount && g.CurrentAmount-amount < g.TargetAmount {
		n := &models.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Title:     "Goal reached",
			Message:   fmt.Sprintf("You reached your savings goal %q.", g.Name),
			CreatedAt: s.now().UTC(),
		}
		if err := s.repo.CreateNotification(ctx, n); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ListCategories returns the user's categories.
func (s *FinanceService) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	return s.repo.ListCategories(ctx, userID)
}

// CreateCategory validates and stores c.
func (s *FinanceService) CreateCategory(ctx context.Context, userID string, c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("name is required")
	}
	if !c.Type.Valid() {
		return invalid("type must be %q or %q", models.Income, models.Expense)
	}
	c.ID = uuid.NewString()
	c.UserID = userID
	return s.repo.CreateCategory(ctx, c)
}

// DeleteCategory removes a category.
func (s *FinanceService) DeleteCategory(ctx context.Context, userID, id string) error {
	return s.repo.DeleteCategory(ctx, userID, id)
}

// ListNotifications returns the user's notifications, newest first.
func (s *FinanceService) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.ListNotifications(ctx, userID)
}

// MarkNotificationRead flags one notification as read.
func (s *FinanceService) MarkNotificationRead(ctx context.Context, userID, id string) error {
	n, err := s.repo.MarkNotificationsRead(ctx, userID, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
