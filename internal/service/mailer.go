package service

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers password reset codes.
type Mailer interface {
	SendResetCode(ctx context.Context, email, code string) error
}

// LogMailer writes reset codes to the log instead of sending mail. It is
// meant for development setups without an SMTP relay.
type LogMailer struct {
	Log *zap.Logger
}

// SendResetCode implements Mailer.
func (m LogMailer) SendResetCode(_ context.Context, email, code string) error {
	m.Log.Info("password reset code", zap.String("email", email), zap.String("code", code))
	return nil
}
