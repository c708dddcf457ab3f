package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/denylist"
	"github.com/atinyakov/FinWise/internal/models"
	"github.com/atinyakov/FinWise/internal/oauth"
	"github.com/atinyakov/FinWise/internal/token"
)

// memUsers is an in-memory UserRepository.
type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	codes  map[string]*models.ResetCode
	getErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}, codes: map[string]*models.ResetCode{}}
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byID {
		if v.Email == u.Email {
			return models.ErrUserExists
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, v := range m.byID {
		if v.Email == email {
			cp := *v
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id, fullName, currency string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	u.FullName, u.Currency = fullName, currency
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, email, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byID {
		if v.Email == email {
			v.PasswordHash = hash
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memUsers) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memUsers) SaveResetCode(_ context.Context, email, code string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = &models.ResetCode{Email: email, Code: code, ExpiresAt: expiresAt}
	return nil
}

func (m *memUsers) GetResetCode(_ context.Context, email string) (*models.ResetCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rc, ok := m.codes[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return rc, nil
}

func (m *memUsers) DeleteResetCode(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, email)
	return nil
}

type captureMailer struct {
	email, code string
	calls       int
}

func (c *captureMailer) SendResetCode(_ context.Context, email, code string) error {
	c.email, c.code = email, code
	c.calls++
	return nil
}

type verifierFunc func(ctx context.Context, tok string) (*oauth.Identity, error)

func (f verifierFunc) Verify(ctx context.Context, tok string) (*oauth.Identity, error) {
	return f(ctx, tok)
}

type authFixture struct {
	svc    *AuthService
	users  *memUsers
	tokens *token.Manager
	deny   *denylist.Memory
	mailer *captureMailer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  newMemUsers(),
		tokens: token.NewManager("test-secret", time.Hour),
		deny:   denylist.NewMemory(),
		mailer: &captureMailer{},
	}
	google := verifierFunc(func(_ context.Context, tok string) (*oauth.Identity, error) {
		if tok != "good" {
			return nil, oauth.ErrInvalidToken
		}
		return &oauth.Identity{Provider: models.ProviderGoogle, Subject: "g1", Email: "Gina@Example.com", Name: "Gina"}, nil
	})
	f.svc = NewAuthService(f.users, f.tokens, f.deny, f.mailer,
		map[string]oauth.Verifier{models.ProviderGoogle: google}, zap.NewNop())
	return f
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Register(ctx, RegisterInput{Email: " Ann@Example.com ", Password: "secret1", FullName: "Ann"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if sess.User.Email != "ann@example.com" {
		t.Errorf("Email = %q; want normalized address", sess.User.Email)
	}
	if sess.User.Currency != DefaultCurrency || sess.User.Provider != models.ProviderLocal {
		t.Errorf("unexpected defaults: %+v", sess.User)
	}
	claims, err := f.tokens.Parse(sess.Token)
	if err != nil || claims.Subject != sess.User.ID {
		t.Fatalf("token does not identify the new user: %v", err)
	}

	if _, err := f.svc.Register(ctx, RegisterInput{Email: "ann@example.com", Password: "secret1"}); !errors.Is(err, models.ErrUserExists) {
		t.Errorf("duplicate Register error = %v; want ErrUserExists", err)
	}

	if _, err := f.svc.Login(ctx, "ANN@example.com", "secret1"); err != nil {
		t.Errorf("Login returned error: %v", err)
	}
	if _, err := f.svc.Login(ctx, "ann@example.com", "wrong"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v; want ErrInvalidCredentials", err)
	}
	if _, err := f.svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v; want ErrInvalidCredentials", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture(t)
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"bad email", RegisterInput{Email: "not-an-email", Password: "secret1"}},
		{"short password", RegisterInput{Email: "a@b.co", Password: "123"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Register(context.Background(), tc.in); !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("Register error = %v; want ErrInvalidInput", err)
			}
		})
	}
}

func TestLogin_RepositoryError(t *testing.T) {
	f := newAuthFixture(t)
	f.users.getErr = errors.New("db down")
	_, err := f.svc.Login(context.Background(), "a@b.co", "secret1")
	if err == nil || errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("Login error = %v; want the repository error", err)
	}
}

func TestOAuthLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.OAuthLogin(ctx, models.ProviderGoogle, "good")
	if err != nil {
		t.Fatalf("OAuthLogin returned error: %v", err)
	}
	if first.User.Email != "gina@example.com" || first.User.Provider != models.ProviderGoogle {
		t.Errorf("unexpected user %+v", first.User)
	}
	second, err := f.svc.OAuthLogin(ctx, models.ProviderGoogle, "good")
	if err != nil {
		t.Fatalf("second OAuthLogin returned error: %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Errorf("second sign-in created a new account")
	}

	if _, err := f.svc.OAuthLogin(ctx, models.ProviderGoogle, "bad"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("rejected token error = %v; want ErrInvalidCredentials", err)
	}
	if _, err := f.svc.OAuthLogin(ctx, models.ProviderFacebook, "good"); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("disabled provider error = %v; want ErrInvalidInput", err)
	}

	// OAuth-only accounts have no password.
	if _, err := f.svc.Login(ctx, "gina@example.com", ""); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("password login on OAuth account error = %v", err)
	}
}

func TestPasswordReset(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, RegisterInput{Email: "ann@example.com", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.ForgotPassword(ctx, "nobody@example.com"); err != nil {
		t.Errorf("ForgotPassword for unknown email returned %v; want nil", err)
	}
	if f.mailer.calls != 0 {
		t.Errorf("mail sent for unknown email")
	}

	if err := f.svc.ForgotPassword(ctx, "Ann@example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}
	if f.mailer.email != "ann@example.com" || len(f.mailer.code) != 6 {
		t.Fatalf("mailer got email=%q code=%q", f.mailer.email, f.mailer.code)
	}
	code := f.mailer.code

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	if err := f.svc.VerifyResetCode(ctx, "ann@example.com", wrong); !errors.Is(err, models.ErrInvalidResetCode) {
		t.Errorf("wrong code error = %v", err)
	}
	if err := f.svc.VerifyResetCode(ctx, "ann@example.com", code); err != nil {
		t.Errorf("VerifyResetCode returned %v", err)
	}
	if err := f.svc.ResetPassword(ctx, "ann@example.com", code, "newpass1"); err != nil {
		t.Fatalf("ResetPassword returned %v", err)
	}
	if _, err := f.svc.Login(ctx, "ann@example.com", "newpass1"); err != nil {
		t.Errorf("Login with new password failed: %v", err)
	}
	if err := f.svc.ResetPassword(ctx, "ann@example.com", code, "again12"); !errors.Is(err, models.ErrInvalidResetCode) {
		t.Errorf("reused code error = %v; want ErrInvalidResetCode", err)
	}
}

func TestVerifyResetCode_Expired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_ = f.users.SaveResetCode(ctx, "ann@example.com", "123456", time.Now().Add(-time.Minute))

	if err := f.svc.VerifyResetCode(ctx, "ann@example.com", "123456"); !errors.Is(err, models.ErrInvalidResetCode) {
		t.Errorf("expired code error = %v; want ErrInvalidResetCode", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	sess, err := f.svc.Register(ctx, RegisterInput{Email: "ann@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	claims, err := f.tokens.Parse(sess.Token)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout returned %v", err)
	}
	revoked, err := f.deny.IsRevoked(ctx, claims.ID)
	if err != nil || !revoked {
		t.Errorf("IsRevoked = %v, %v; want true", revoked, err)
	}
	if err := f.svc.Logout(ctx, nil); err != nil {
		t.Errorf("Logout(nil) returned %v", err)
	}
}

func TestProfileAndDelete(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	sess, err := f.svc.Register(ctx, RegisterInput{Email: "ann@example.com", Password: "secret1", FullName: "Ann"})
	if err != nil {
		t.Fatal(err)
	}
	id := sess.User.ID

	u, err := f.svc.UpdateProfile(ctx, id, "", "eur")
	if err != nil {
		t.Fatalf("UpdateProfile returned %v", err)
	}
	if u.FullName != "Ann" || u.Currency != "EUR" {
		t.Errorf("UpdateProfile = %+v", u)
	}
	if _, err := f.svc.UpdateProfile(ctx, id, "", "euros"); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("bad currency error = %v", err)
	}

	got, err := f.svc.Profile(ctx, id)
	if err != nil || got.Currency != "EUR" {
		t.Errorf("Profile = %+v, %v", got, err)
	}

	claims, _ := f.tokens.Parse(sess.Token)
	if err := f.svc.DeleteAccount(ctx, claims); err != nil {
		t.Fatalf("DeleteAccount returned %v", err)
	}
	if _, err := f.svc.Profile(ctx, id); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Profile after delete error = %v", err)
	}
	if revoked, _ := f.deny.IsRevoked(ctx, claims.ID); !revoked {
		t.Errorf("token still valid after account deletion")
	}
}
