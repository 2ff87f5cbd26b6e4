package service

import (
	"context"
	"log/slog"
	"time"

	"docvault/internal/middleware"
	"docvault/internal/models"
	"docvault/internal/repository"
	"docvault/internal/security"
)

// AccountStore is the live-account contract the registration workflow consumes.
type AccountStore interface {
	FindActiveByUsername(ctx context.Context, username string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type AccountService struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
}

func NewAccountService(users repository.UserRepository, hasher security.PasswordHasher) *AccountService {
	return &AccountService{users: users, hasher: hasher}
}

func (s *AccountService) FindActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetActiveByUsername(ctx, username)
}

// Authenticate returns the account when the credentials match and (nil, nil) when
// they do not. Only persistence failures and corrupt stored hashes are errors.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetActiveByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "Stored password hash is unreadable",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, models.NewInternalError(err)
	}
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (s *AccountService) Create(ctx context.Context, user *models.User) error {
	return s.users.Create(ctx, user)
}

// ProvisioningDefaults are applied to every account created from a registration request.
type ProvisioningDefaults struct {
	Role         string
	StorageQuota int64
}

// AccountProvisioner materializes a live account from an approved registration request.
type AccountProvisioner struct {
	defaults ProvisioningDefaults
	newKey   func() (string, error)
	now      func() time.Time
}

func NewAccountProvisioner(defaults ProvisioningDefaults) *AccountProvisioner {
	if defaults.Role == "" {
		defaults.Role = models.RoleUser
	}
	if defaults.StorageQuota <= 0 {
		defaults.StorageQuota = models.DefaultStorageQuota
	}
	return &AccountProvisioner{
		defaults: defaults,
		newKey:   security.GeneratePrivateKey,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Provision creates the account through users, which is expected to be bound to
// the same transaction as the request's status change. The stored hash is copied as is.
func (p *AccountProvisioner) Provision(ctx context.Context, users repository.UserRepository, req *models.RegistrationRequest) (*models.User, error) {
	key, err := p.newKey()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:       req.Username,
		Password:       req.PasswordHash,
		Email:          req.Email,
		RoleID:         p.defaults.Role,
		PrivateKey:     key,
		StorageQuota:   p.defaults.StorageQuota,
		StorageCurrent: 0,
		Onboarding:     true,
		CreateDate:     p.now(),
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
