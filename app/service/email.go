package service

import (
	"context"
	"strings"

	"github.com/petmatch/auth-service/app/entity"

	"github.com/sirupsen/logrus"
)

// NormalizeEmail lowercases and trims an email address. Uniqueness checks
// and login lookups always go through the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ResetMailer dispatches reset tokens out of band. The token value never
// appears in the forgot-password HTTP response.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, user *entity.User, resetToken string) error
}

// LogResetMailer stands in for a real email channel: it records the dispatch
// without the token value, so deployments without SMTP still behave.
type LogResetMailer struct{}

func (LogResetMailer) SendPasswordReset(_ context.Context, user *entity.User, _ string) error {
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("Password reset token dispatched")
	return nil
}
