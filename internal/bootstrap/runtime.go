// Package bootstrap prepares the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docvault/internal/cache"
	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/middleware"
	"docvault/internal/models"
	"docvault/internal/repository"
	"docvault/internal/security"
	"docvault/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and redis and makes sure the root
// administrator exists. The redis client is nil when redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	hasher := security.NewBcryptHasher(security.ResolveCost(cfg.BcryptWork, middleware.Logger))
	if _, err := EnsureRootAdmin(ctx, cfg, db, hasher); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap root admin: %w", err)
	}

	return db, r, nil
}

// EnsureRootAdmin creates the configured administrator, or promotes an existing
// account with that username. It does nothing when ROOT_ADMIN_PASSWORD is empty.
func EnsureRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB, hasher security.PasswordHasher) (*models.User, error) {
	if cfg == nil || db == nil || cfg.RootAdminPassword == "" {
		return nil, nil
	}

	username := strings.TrimSpace(cfg.RootAdminUsername)
	if username == "" {
		username = "admin"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.RootAdminEmail))
	if email == "" {
		email = "admin@localhost.localdomain"
	}

	hash, err := hasher.Hash(cfg.RootAdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash root password: %w", err)
	}

	provisioner := service.NewAccountProvisioner(service.ProvisioningDefaults{
		Role:         models.RoleAdmin,
		StorageQuota: cfg.DefaultStorageQuota,
	})

	var root *models.User
	err = repository.NewTransactor(db).RunInTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		existing, err := stores.Users.GetActiveByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.IsAdmin() {
				if err := stores.Users.SetRole(ctx, existing.ID, models.RoleAdmin); err != nil {
					return err
				}
				existing.RoleID = models.RoleAdmin
			}
			root = existing
			return nil
		}

		root, err = provisioner.Provision(ctx, stores.Users, &models.RegistrationRequest{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		// The root account skips the first-login onboarding flow.
		if err := stores.Users.CompleteOnboarding(ctx, root.ID); err != nil {
			return err
		}
		root.Onboarding = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.Info("Root admin ensured",
		slog.String("user_id", root.ID),
		slog.String("username", root.Username),
	)
	return root, nil
}
