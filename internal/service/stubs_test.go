package service

import (
	"context"
	"errors"
	"testing"

	"docvault/internal/models"
	"docvault/internal/repository"
	"docvault/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountStoreStub struct {
	findActiveFn   func(context.Context, string) (*models.User, error)
	authenticateFn func(context.Context, string, string) (*models.User, error)
	createFn       func(context.Context, *models.User) error
}

func (s *accountStoreStub) FindActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.findActiveFn == nil {
		return nil, nil
	}
	return s.findActiveFn(ctx, username)
}

func (s *accountStoreStub) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if s.authenticateFn == nil {
		return nil, nil
	}
	return s.authenticateFn(ctx, username, password)
}

func (s *accountStoreStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, user)
}

type requestRepoStub struct {
	createFn           func(context.Context, *models.RegistrationRequest) (string, error)
	getByIDFn          func(context.Context, string) (*models.RegistrationRequest, error)
	getByUsernameFn    func(context.Context, string) (*models.RegistrationRequest, error)
	getPendingFn       func(context.Context, string) (*models.RegistrationRequest, error)
	findAllPendingFn   func(context.Context) ([]models.RegistrationRequest, error)
	updateStatusFn     func(context.Context, string, models.RegistrationStatus) error
	transitionStatusFn func(context.Context, string, models.RegistrationStatus, models.RegistrationStatus) (bool, error)
	deleteFn           func(context.Context, string) error
}

func (s *requestRepoStub) Create(ctx context.Context, req *models.RegistrationRequest) (string, error) {
	if s.createFn == nil {
		req.ID = "req-1"
		return req.ID, nil
	}
	return s.createFn(ctx, req)
}

func (s *requestRepoStub) GetByID(ctx context.Context, id string) (*models.RegistrationRequest, error) {
	if s.getByIDFn == nil {
		return nil, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s *requestRepoStub) GetByUsername(ctx context.Context, username string) (*models.RegistrationRequest, error) {
	if s.getByUsernameFn == nil {
		return nil, nil
	}
	return s.getByUsernameFn(ctx, username)
}

func (s *requestRepoStub) GetPendingByUsername(ctx context.Context, username string) (*models.RegistrationRequest, error) {
	if s.getPendingFn == nil {
		return nil, nil
	}
	return s.getPendingFn(ctx, username)
}

func (s *requestRepoStub) FindAllPending(ctx context.Context) ([]models.RegistrationRequest, error) {
	if s.findAllPendingFn == nil {
		return nil, nil
	}
	return s.findAllPendingFn(ctx)
}

func (s *requestRepoStub) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error {
	if s.updateStatusFn == nil {
		return nil
	}
	return s.updateStatusFn(ctx, id, status)
}

func (s *requestRepoStub) TransitionStatus(ctx context.Context, id string, from, to models.RegistrationStatus) (bool, error) {
	if s.transitionStatusFn == nil {
		return true, nil
	}
	return s.transitionStatusFn(ctx, id, from, to)
}

func (s *requestRepoStub) Delete(ctx context.Context, id string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}

type lookupStub func(context.Context, string) (models.RegistrationStatus, bool)

func (f lookupStub) LookupStatus(ctx context.Context, username string) (models.RegistrationStatus, bool) {
	return f(ctx, username)
}

// failingTransactor never reaches the store; it stands in for a database that cannot begin a transaction.
type failingTransactor struct{ err error }

func (f failingTransactor) RunInTx(context.Context, func(context.Context, repository.Stores) error) error {
	return f.err
}

type hasherStub struct {
	hashFn func(string) (string, error)
}

func (h hasherStub) Hash(password string) (string, error) { return h.hashFn(password) }

func (h hasherStub) Verify(string, string) (bool, error) { return false, nil }

var _ security.PasswordHasher = hasherStub{}

// testHasher keeps bcrypt fast in tests.
func testHasher() *security.BcryptHasher {
	return security.NewBcryptHasher(4)
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	appErr := assertAppError(t, err, models.CodeValidation)
	assert.Equal(t, models.KindValidation, appErr.Kind)
}
