// Package models defines the core data structures shared by the FinWise
// server and client: users, transactions, budgets, savings goals,
// categories and notifications.
package models

import "time"

// User represents an application user.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id" db:"id"`
	// Email is the login name of the user.
	Email string `json:"email" db:"email"`
	// FullName is the display name chosen at registration.
	FullName string `json:"fullName" db:"full_name"`
	// PasswordHash is the bcrypt hash of the user's password. Empty for
	// accounts created through an OAuth provider.
	PasswordHash string `json:"-" db:"password_hash"`
	// Provider is "local", "google" or "facebook".
	Provider string `json:"provider" db:"provider"`
	// Currency is the ISO 4217 code used to display amounts.
	Currency string `json:"currency" db:"currency"`
	// CreatedAt is the account creation time (UTC).
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Authentication providers.
const (
	ProviderLocal    = "local"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// TransactionType tells income apart from expenses.
type TransactionType string

const (
	// Income is money received.
	Income TransactionType = "income"
	// Expense is money spent.
	Expense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Transaction is a single income or expense entry.
type Transaction struct {
	ID       string          `json:"id" db:"id"`
	UserID   string          `json:"-" db:"user_id"`
	Amount   float64         `json:"amount" db:"amount"`
	Type     TransactionType `json:"type" db:"type"`
	Category string          `json:"category" db:"category"`
	Note     string          `json:"note" db:"note"`
	Date     time.Time       `json:"date" db:"date"`
	// ReceiptKey references an uploaded receipt image, if any.
	ReceiptKey string `json:"receiptKey,omitempty" db:"receipt_key"`
}

// Budget caps spending for a category over a period.
type Budget struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	Category  string    `json:"category" db:"category"`
	Amount    float64   `json:"amount" db:"amount"`
	Period    string    `json:"period" db:"period"` // "weekly", "monthly" or "yearly"
	StartDate time.Time `json:"startDate" db:"start_date"`
}

// SavingGoal tracks progress towards a savings target.
type SavingGoal struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"-" db:"user_id"`
	Name          string     `json:"name" db:"name"`
	TargetAmount  float64    `json:"targetAmount" db:"target_amount"`
	CurrentAmount float64    `json:"currentAmount" db:"current_amount"`
	Deadline      *time.Time `json:"deadline,omitempty" db:"deadline"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// Category is a user-defined label for transactions.
type Category struct {
	ID     string          `json:"id" db:"id"`
	UserID string          `json:"-" db:"user_id"`
	Name   string          `json:"name" db:"name"`
	Type   TransactionType `json:"type" db:"type"`
	Icon   string          `json:"icon" db:"icon"`
}

// Notification is an in-app message addressed to a user.
type Notification struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ResetCode is a one-time password reset code sent to a user's email.
type ResetCode struct {
	Email     string    `db:"email"`
	Code      string    `db:"code"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Budget periods.
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)
