package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"docvault/internal/models"
	"docvault/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(username string) *models.User {
	return &models.User{
		Username:     username,
		Password:     "$2a$04$hash",
		Email:        username + "@example.com",
		RoleID:       models.RoleUser,
		PrivateKey:   "key",
		StorageQuota: models.DefaultStorageQuota,
		Onboarding:   true,
	}
}

func TestUserRepository_GetActiveByUsernameSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "role_id"}).
		AddRow("u-1", "alice", "alice@example.com", "user")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1 AND "users"."delete_date" IS NULL LIMIT`)).
		WithArgs("alice", 1).
		WillReturnRows(rows)

	user, err := repo.GetActiveByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u-1", user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newUser("alice")
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreateDate.IsZero())

	got, err := repo.GetActiveByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.Onboarding)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice@example.com", byID.Email)

	err = repo.Create(ctx, newUser("alice"))
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeAlreadyExistingUsername))
}

func TestUserRepository_DeletedAccountIsNotActive(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newUser("gone")
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, db.Delete(&models.User{}, "id = ?", user.ID).Error)

	got, err := repo.GetActiveByUsername(ctx, "gone")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The username is free again once the holder is deleted.
	again := newUser("gone")
	require.NoError(t, repo.Create(ctx, again))
	assert.True(t, models.HasCode(repo.Create(ctx, newUser("gone")), models.CodeAlreadyExistingUsername))
}

func TestAuditLogRepository_CreateAndList(t *testing.T) {
	repo := NewAuditLogRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	entry := &models.AuditLog{EntityID: "u-1", EntityClass: "User", Type: models.AuditLogCreate, UserID: "admin-1"}
	require.NoError(t, repo.Create(ctx, entry))
	assert.NotEmpty(t, entry.ID)

	entries, err := repo.ListByEntity(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditLogCreate, entries[0].Type)
	assert.Equal(t, "admin-1", entries[0].UserID)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	tx := NewTransactor(db)
	ctx := context.Background()

	boom := errors.New("provisioning failed")
	err := tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
		if _, err := stores.Requests.Create(ctx, newRequest("alice", models.RegistrationStatusPending, time.Now().UTC())); err != nil {
			return err
		}
		if err := stores.Users.Create(ctx, newUser("alice")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stores := NewStores(db)
	req, err := stores.Requests.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, req)
	user, err := stores.Users.GetActiveByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestTransactor_Commits(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	err := NewTransactor(db).RunInTx(ctx, func(ctx context.Context, stores Stores) error {
		return stores.Users.Create(ctx, newUser("bob"))
	})
	require.NoError(t, err)

	user, err := NewUserRepository(db).GetActiveByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.NotNil(t, user)
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: users.username")))
	assert.True(t, isUniqueConstraintError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_username" (SQLSTATE 23505)`)))
	assert.False(t, isUniqueConstraintError(errors.New("connection refused")))
	assert.True(t, isUniqueConstraintError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23503"}))
}

func TestUserRepository_SetRoleAndCompleteOnboarding(t *testing.T) {
	repo := NewUserRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	user := newUser("carol")
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.SetRole(ctx, user.ID, models.RoleAdmin))
	require.NoError(t, repo.CompleteOnboarding(ctx, user.ID))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsAdmin())
	assert.False(t, got.Onboarding)

	err = repo.SetRole(ctx, "missing", models.RoleAdmin)
	assert.True(t, errors.As(err, new(*models.AppError)))
	assert.Equal(t, 404, models.StatusFor(err))
}
