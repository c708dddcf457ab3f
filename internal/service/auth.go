// Package service provides the FinWise business logic: accounts,
// sessions and password resets in AuthService, and per-user finance
// records in FinanceService. Persistence is delegated to repository
// interfaces.
package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/FinWise/internal/denylist"
	"github.com/atinyakov/FinWise/internal/models"
	"github.com/atinyakov/FinWise/internal/oauth"
	"github.com/atinyakov/FinWise/internal/token"
)

const (
	// ResetCodeTTL is how long a password reset code stays valid.
	ResetCodeTTL = 15 * time.Minute
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
	// DefaultCurrency is assigned when registration does not name one.
	DefaultCurrency = "USD"
)

// UserRepository defines the persistence operations required by
// AuthService.
type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, fullName, currency string) error
	UpdatePassword(ctx context.Context, email, hash string) error
	DeleteUser(ctx context.Context, id string) error
	SaveResetCode(ctx context.Context, email, code string, expiresAt time.Time) error
	GetResetCode(ctx context.Context, email string) (*models.ResetCode, error)
	DeleteResetCode(ctx context.Context, email string) error
}

// TokenIssuer creates session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, *token.Claims, error)
}

// Session is the result of a successful sign-in.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterInput holds the fields accepted at registration.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Currency string
}

// AuthService implements account and session operations.
type AuthService struct {
	users     UserRepository
	tokens    TokenIssuer
	deny      denylist.Denylist
	mailer    Mailer
	verifiers map[string]oauth.Verifier
	log       *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService. verifiers maps a provider name
// such as models.ProviderGoogle to its token verifier.
func NewAuthService(users UserRepository, tokens TokenIssuer, deny denylist.Denylist,
	mailer Mailer, verifiers map[string]oauth.Verifier, log *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		deny:      deny,
		mailer:    mailer,
		verifiers: verifiers,
		log:       log,
		now:       time.Now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: email", models.ErrInvalidInput)
	}
	return email, nil
}

func checkPassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", models.ErrInvalidInput, MinPasswordLength)
	}
	return nil
}

func (s *AuthService) startSession(u *models.User) (*Session, error) {
	tok, _, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, User: u}, nil
}

// Register creates a local account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: string(hash),
		Provider:     models.ProviderLocal,
		Currency:     currency,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return s.startSession(u)
}

// Login checks email and password. Unknown emails and wrong passwords both
// yield models.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return s.startSession(u)
}

// OAuthLogin verifies a provider token and signs in the matching account,
// creating it on first use.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, providerToken string) (*Session, error) {
	v, ok := s.verifiers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q is not enabled", models.ErrInvalidInput, provider)
	}
	id, err := v.Verify(ctx, providerToken)
	if errors.Is(err, oauth.ErrInvalidToken) {
		s.log.Info("provider token rejected", zap.String("provider", provider), zap.Error(err))
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(id.Email)
	u, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return s.startSession(u)
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	u = &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		FullName:  id.Name,
		Provider:  id.Provider,
		Currency:  DefaultCurrency,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("provider", provider))
	return s.startSession(u)
}

func newResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ForgotPassword sends a reset code to email. Unknown addresses succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		s.log.Debug("reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	code, err := newResetCode()
	if err != nil {
		return err
	}
	if err := s.users.SaveResetCode(ctx, u.Email, code, s.now().Add(ResetCodeTTL).UTC()); err != nil {
		return err
	}
	return s.mailer.SendResetCode(ctx, u.Email, code)
}

// VerifyResetCode checks code without consuming it.
func (s *AuthService) VerifyResetCode(ctx context.Context, email, code string) error {
	rc, err := s.users.GetResetCode(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrInvalidResetCode
	}
	if err != nil {
		return err
	}
	if !s.now().Before(rc.ExpiresAt) || subtle.ConstantTimeCompare([]byte(rc.Code), []byte(code)) != 1 {
		return models.ErrInvalidResetCode
	}
	return nil
}

// ResetPassword sets a new password and consumes the reset code.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.VerifyResetCode(ctx, email, code); err != nil {
		return err
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, email, string(hash)); err != nil {
		return err
	}
	return s.users.DeleteResetCode(ctx, email)
}

// Logout revokes the session token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *token.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.deny.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Profile returns the user's account.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// UpdateProfile changes display name and currency. Empty fields keep their
// current value.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, fullName, currency string) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(fullName); v != "" {
		u.FullName = v
	}
	if v := strings.ToUpper(strings.TrimSpace(currency)); v != "" {
		if len(v) != 3 {
			return nil, fmt.Errorf("%w: currency must be a 3-letter code", models.ErrInvalidInput)
		}
		u.Currency = v
	}
	if err := s.users.UpdateProfile(ctx, userID, u.FullName, u.Currency); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteAccount removes the user and all their records, then revokes the
// token used for the request.
func (s *AuthService) DeleteAccount(ctx context.Context, claims *token.Claims) error {
	if err := s.users.DeleteUser(ctx, claims.Subject); err != nil {
		return err
	}
	s.log.Info("account deleted", zap.String("user_id", claims.Subject))
	return s.Logout(ctx, claims)
}
