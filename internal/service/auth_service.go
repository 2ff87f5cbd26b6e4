package service

import (
	"context"
	"log/slog"

	"docvault/internal/middleware"
	"docvault/internal/models"
	"docvault/internal/observability"
)

// RegistrationStatusLookup resolves the latest registration status for a username.
type RegistrationStatusLookup interface {
	LookupStatus(ctx context.Context, username string) (models.RegistrationStatus, bool)
}

// AuthService authenticates live accounts and explains failed attempts for
// usernames that only exist as registration requests.
type AuthService struct {
	accounts      AccountStore
	registrations RegistrationStatusLookup
}

func NewAuthService(accounts AccountStore, registrations RegistrationStatusLookup) *AuthService {
	return &AuthService{accounts: accounts, registrations: registrations}
}

func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "AuthService.Authenticate")
	defer span.End()

	user, err := s.accounts.Authenticate(ctx, username, password)
	if err != nil {
		if _, ok := models.AsAppError(err); !ok {
			err = models.NewInternalError(err)
		}
		span.SetError(err)
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	failure := s.failureFor(ctx, username)
	observability.AuthenticationFailures.WithLabelValues(failure.Code).Inc()
	middleware.Logger.InfoContext(ctx, "Authentication failed",
		slog.String("username", username),
		slog.String("reason", failure.Code),
	)
	return nil, failure
}

func (s *AuthService) failureFor(ctx context.Context, username string) *models.AppError {
	status, ok := s.registrations.LookupStatus(ctx, username)
	if ok {
		switch status {
		case models.RegistrationStatusPending:
			return models.NewForbiddenError(models.CodePendingApproval,
				"Your account is awaiting administrator approval")
		case models.RegistrationStatusRejected:
			return models.NewForbiddenError(models.CodeRegistrationRejected,
				"Your registration request was rejected, please contact an administrator")
		}
	}
	return models.NewForbiddenError(models.CodeInvalidCredentials, "Invalid username or password")
}
