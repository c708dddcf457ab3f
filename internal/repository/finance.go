package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/atinyakov/FinWise/internal/models"
)

// PostgresFinanceRepository stores transactions, budgets, savings goals,
// categories and notifications. Every query is scoped to the owning user.
type PostgresFinanceRepository struct {
	// DB is the database handle for executing queries.
	DB *sqlx.DB
}

// NewPostgresFinanceRepository creates a PostgresFinanceRepository over db.
func NewPostgresFinanceRepository(db *sqlx.DB) *PostgresFinanceRepository {
	return &PostgresFinanceRepository{DB: db}
}

const transactionColumns = `id, user_id, amount, type, category, note, date, receipt_key`

// ListTransactions returns the user's transactions, newest first. A nil
// bound leaves that side of the range open.
func (r *PostgresFinanceRepository) ListTransactions(ctx context.Context, userID string, from, to *time.Time) ([]models.Transaction, error) {
	out := []models.Transaction{}
	err := r.DB.SelectContext(ctx, &out, `
		SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = $1
		   AND ($2::timestamptz IS NULL OR date >= $2)
		   AND ($3::timestamptz IS NULL OR date < $3)
		 ORDER BY date DESC
	`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return out, nil
}

// GetTransaction returns one transaction.
func (r *PostgresFinanceRepository) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.DB.GetContext(ctx, &tx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &tx, nil
}

// CreateTransaction inserts tx.
func (r *PostgresFinanceRepository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, type, category, note, date, receipt_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Category, tx.Note, tx.Date, tx.ReceiptKey)
	if err != nil {
		return fmt.Errorf("CreateTransaction: %w", err)
	}
	return nil
}

// UpdateTransaction replaces the mutable fields of tx.
func (r *PostgresFinanceRepository) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	return expectOne(r.DB.ExecContext(ctx, `
		UPDATE transactions
		   SET amount = $1, type = $2, category = $3, note = $4, date = $5, receipt_key = $6
		 WHERE id = $7 AND user_id = $8
	`, tx.Amount, tx.Type, tx.Category, tx.Note, tx.Date, tx.ReceiptKey, tx.ID, tx.UserID))
}

// DeleteTransaction removes a transaction.
func (r *PostgresFinanceRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	return expectOne(r.DB.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID))
}

const budgetColumns = `id, user_id, category, amount, period, start_date`

// ListBudgets returns the user's budgets.
func (r *PostgresFinanceRepository) ListBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	out := []models.Budget{}
	err := r.DB.SelectContext(ctx, &out,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListBudgets: %w", err)
	}
	return out, nil
}

// CreateBudget inserts b.
func (r *PostgresFinanceRepository) CreateBudget(ctx context.Context, b *models.Budget) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, category, amount, period, start_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, b.ID, b.UserID, b.Category, b.Amount, b.Period, b.StartDate)
	if err != nil {
		return fmt.Errorf("CreateBudget: %w", err)
	}
	return nil
}

// UpdateBudget replaces the mutable fields of b.
func (r *PostgresFinanceRepository) UpdateBudget(ctx context.Context, b *models.Budget) error {
	return expectOne(r.DB.ExecContext(ctx, `
		UPDATE budgets SET category = $1, amount = $2, period = $3, start_date = $4
		 WHERE id = $5 AND user_id = $6
	`, b.Category, b.Amount, b.Period, b.StartDate, b.ID, b.UserID))
}

// DeleteBudget removes a budget.
func (r *PostgresFinanceRepository) DeleteBudget(ctx context.Context, userID, id string) error {
	return expectOne(r.DB.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID))
}

const goalColumns = `id, user_id, name, target_amount, current_amount, deadline, created_at`

// ListSavingGoals returns the user's goals.
func (r *PostgresFinanceRepository) ListSavingGoals(ctx context.Context, userID string) ([]models.SavingGoal, error) {
	out := []models.SavingGoal{}
	err := r.DB.SelectContext(ctx, &out,
		`SELECT `+goalColumns+` FROM saving_goals WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListSavingGoals: %w", err)
	}
	return out, nil
}

// CreateSavingGoal inserts g.
func (r *PostgresFinanceRepository) CreateSavingGoal(ctx context.Context, g *models.SavingGoal) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO saving_goals (id, user_id, name, target_amount, current_amount, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, g.ID, g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, g.Deadline, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("CreateSavingGoal: %w", err)
	}
	return nil
}

// UpdateSavingGoal replaces the mutable fields of g.
func (r *PostgresFinanceRepository) UpdateSavingGoal(ctx context.Context, g *models.SavingGoal) error {
	return expectOne(r.DB.ExecContext(ctx, `
		UPDATE saving_goals SET name = $1, target_amount = $2, current_amount = $3, deadline = $4
		 WHERE id = $5 AND user_id = $6
	`, g.Name, g.TargetAmount, g.CurrentAmount, g.Deadline, g.ID, g.UserID))
}

// DeleteSavingGoal removes a goal.
func (r *PostgresFinanceRepository) DeleteSavingGoal(ctx context.Context, userID, id string) error {
	return expectOne(r.DB.ExecContext(ctx,
		`DELETE FROM saving_goals WHERE id = $1 AND user_id = $2`, id, userID))
}

// AddToSavingGoal adds amount to a goal atomically and returns the result.
func (r *PostgresFinanceRepository) AddToSavingGoal(ctx context.Context, userID, id string, amount float64) (*models.SavingGoal, error) {
	var g models.SavingGoal
	err := r.DB.GetContext(ctx, &g, `
		UPDATE saving_goals SET current_amount = current_amount + $1
		 WHERE id = $2 AND user_id = $3
		RETURNING `+goalColumns, amount, id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

const categoryColumns = `id, user_id, name, type, icon`

// ListCategories returns the user's categories.
func (r *PostgresFinanceRepository) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	out := []models.Category{}
	err := r.DB.SelectContext(ctx, &out,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	return out, nil
}

// CreateCategory inserts c. A duplicate name yields models.ErrInvalidInput.
func (r *PostgresFinanceRepository) CreateCategory(ctx context.Context, c *models.Category) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, type, icon) VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.UserID, c.Name, c.Type, c.Icon)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q already exists: %w", c.Name, models.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("CreateCategory: %w", err)
	}
	return nil
}

// DeleteCategory removes a category.
func (r *PostgresFinanceRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	return expectOne(r.DB.ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID))
}

const notificationColumns = `id, user_id, title, message, read, created_at`

// ListNotifications returns the user's notifications, newest first.
func (r *PostgresFinanceRepository) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	out := []models.Notification{}
	err := r.DB.SelectContext(ctx, &out,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListNotifications: %w", err)
	}
	return out, nil
}

// CreateNotification inserts n.
func (r *PostgresFinanceRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.UserID, n.Title, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("CreateNotification: %w", err)
	}
	return nil
}

// MarkNotificationsRead flags ids as read and returns how many changed.
func (r *PostgresFinanceRepository) MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND id = ANY($2)`,
		userID, pq.Array(ids),
	)
	if err != nil {
		return 0, fmt.Errorf("MarkNotificationsRead: %w", err)
	}
	return res.RowsAffected()
}
