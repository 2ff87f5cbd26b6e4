package repository

import (
	"context"
	"time"

	"docvault/internal/models"
	"docvault/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for live accounts.
// Soft-deleted accounts are invisible to every lookup.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetActiveByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetRole(ctx context.Context, id, role string) error
	CompleteOnboarding(ctx context.Context, id string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &user, nil
}

func (r *userRepository) GetActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	defer observability.TrackQuery("get_active_by_username", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreateDate.IsZero() {
		user.CreateDate = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError(models.CodeAlreadyExistingUsername, "Username is already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) SetRole(ctx context.Context, id, role string) error {
	return r.updateColumn(ctx, id, "role_id", role)
}

func (r *userRepository) CompleteOnboarding(ctx context.Context, id string) error {
	return r.updateColumn(ctx, id, "onboarding", false)
}

func (r *userRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
