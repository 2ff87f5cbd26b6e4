package database

import (
	"testing"
	"testing/fstest"
	"time"

	"docvault/internal/config"
	"docvault/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "docvault"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=docvault sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		env         string
		destructive bool
		wantSQL     bool
		wantAuto    bool
		wantErr     bool
	}{
		{name: "hybrid development", mode: "hybrid", env: "development", wantSQL: true, wantAuto: true},
		{name: "hybrid production", mode: "", env: "production", wantSQL: true, wantAuto: false},
		{name: "sql only", mode: "sql", env: "development", wantSQL: true},
		{name: "auto development", mode: "auto", env: "development", wantAuto: true},
		{name: "auto production refused", mode: "auto", env: "prod", wantErr: true},
		{name: "auto production allowed", mode: "auto", env: "staging", destructive: true, wantAuto: true},
		{name: "unknown mode", mode: "magic", env: "development", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{DBSchemaMode: tt.mode, Env: tt.env, DBAutoMigrateAllowDestructive: tt.destructive}
			runSQL, runAuto, err := schemaPolicy(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("SELECT 2;")},
		"m/000002_second.down.sql": {Data: []byte("SELECT -2;")},
		"m/000001_first.up.sql":    {Data: []byte("SELECT 1;")},
		"m/000001_first.down.sql":  {Data: []byte("SELECT -1;")},
		"m/README.md":              {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "SELECT -1;", got[0].DownScript)
	assert.Equal(t, "000002_second", got[1].String())
}

func TestLoadMigrations_MissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000001_first.up.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := LoadMigrations(fsys, "m")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Contains(t, all[0].UpScript, "idx_registration_requests_pending_username")
	assert.NotNil(t, GetMigrationByVersion(all[0].Version))
	assert.Nil(t, GetMigrationByVersion(-1))

	activeUsername := GetMigrationByVersion(2)
	require.NotNil(t, activeUsername)
	assert.Contains(t, activeUsername.UpScript, "WHERE delete_date IS NULL")
	assert.NotContains(t, activeUsername.DownScript, "WHERE")
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))
	assert.ErrorContains(t, validateAppliedVersions([]int{1, 7}, registered), "000007")
}

func TestAutoMigrate_PendingUsernameIsUnique(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	now := time.Now().UTC()
	newRequest := func(id string, status models.RegistrationStatus) *models.RegistrationRequest {
		return &models.RegistrationRequest{
			ID: id, Username: "alice", PasswordHash: "h", Email: "a@x.com", CreateDate: now, Status: status,
		}
	}

	require.NoError(t, db.Create(newRequest("r1", models.RegistrationStatusRejected)).Error)
	require.NoError(t, db.Create(newRequest("r2", models.RegistrationStatusApproved)).Error)
	require.NoError(t, db.Create(newRequest("r3", models.RegistrationStatusPending)).Error)
	assert.Error(t, db.Create(newRequest("r4", models.RegistrationStatusPending)).Error)
}
