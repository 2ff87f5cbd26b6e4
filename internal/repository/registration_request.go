package repository

import (
	"context"
	"errors"
	"time"

	"docvault/internal/models"
	"docvault/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const registrationRequestsTable = "registration_requests"

// RegistrationRequestRepository defines persistence operations for registration requests.
// Lookups return (nil, nil) when nothing matches.
type RegistrationRequestRepository interface {
	Create(ctx context.Context, req *models.RegistrationRequest) (string, error)
	GetByID(ctx context.Context, id string) (*models.RegistrationRequest, error)
	GetByUsername(ctx context.Context, username string) (*models.RegistrationRequest, error)
	GetPendingByUsername(ctx context.Context, username string) (*models.RegistrationRequest, error)
	FindAllPending(ctx context.Context) ([]models.RegistrationRequest, error)
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error
	TransitionStatus(ctx context.Context, id string, from, to models.RegistrationStatus) (bool, error)
	Delete(ctx context.Context, id string) error
}

type registrationRequestRepository struct {
	db *gorm.DB
}

// NewRegistrationRequestRepository returns a RegistrationRequestRepository bound to db.
func NewRegistrationRequestRepository(db *gorm.DB) RegistrationRequestRepository {
	return &registrationRequestRepository{db: db}
}

func (r *registrationRequestRepository) Create(ctx context.Context, req *models.RegistrationRequest) (string, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "RegistrationRequest.Create", registrationRequestsTable)
	defer span.End()
	defer observability.TrackQuery("create", registrationRequestsTable)()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreateDate.IsZero() {
		req.CreateDate = time.Now().UTC()
	}
	if req.Status == "" {
		req.Status = models.RegistrationStatusPending
	}

	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		span.RecordError(err)
		if isUniqueConstraintError(err) {
			return "", models.NewConflictError(models.CodeAlreadyExistingRequest,
				"A pending registration request already exists for this username")
		}
		return "", models.NewInternalError(err)
	}
	return req.ID, nil
}

func (r *registrationRequestRepository) GetByID(ctx context.Context, id string) (*models.RegistrationRequest, error) {
	defer observability.TrackQuery("get_by_id", registrationRequestsTable)()

	var req models.RegistrationRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&req).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &req, nil
}

// GetByUsername returns the most recent request for username; equal create dates
// are ordered by id so the result is deterministic.
func (r *registrationRequestRepository) GetByUsername(ctx context.Context, username string) (*models.RegistrationRequest, error) {
	defer observability.TrackQuery("get_by_username", registrationRequestsTable)()

	var req models.RegistrationRequest
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("create_date DESC").
		Order("id DESC").
		Take(&req).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &req, nil
}

func (r *registrationRequestRepository) GetPendingByUsername(ctx context.Context, username string) (*models.RegistrationRequest, error) {
	defer observability.TrackQuery("get_pending_by_username", registrationRequestsTable)()

	var req models.RegistrationRequest
	err := r.db.WithContext(ctx).
		Where("username = ? AND status = ?", username, models.RegistrationStatusPending).
		Take(&req).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &req, nil
}

func (r *registrationRequestRepository) FindAllPending(ctx context.Context) ([]models.RegistrationRequest, error) {
	defer observability.TrackQuery("find_all_pending", registrationRequestsTable)()

	var reqs []models.RegistrationRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", models.RegistrationStatusPending).
		Order("create_date DESC").
		Order("id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *registrationRequestRepository) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error {
	defer observability.TrackQuery("update_status", registrationRequestsTable)()

	err := r.db.WithContext(ctx).
		Model(&models.RegistrationRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// TransitionStatus moves the request from one status to another only if it is
// still in the expected state. It reports whether this call won the transition.
func (r *registrationRequestRepository) TransitionStatus(ctx context.Context, id string, from, to models.RegistrationStatus) (bool, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "RegistrationRequest.TransitionStatus", registrationRequestsTable)
	defer span.End()
	defer observability.TrackQuery("transition_status", registrationRequestsTable)()

	res := r.db.WithContext(ctx).
		Model(&models.RegistrationRequest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		span.RecordError(res.Error)
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *registrationRequestRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", registrationRequestsTable)()

	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.RegistrationRequest{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func notFoundAsNil(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return models.NewInternalError(err)
}
