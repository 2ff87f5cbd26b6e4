package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                      "development",
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		DBPassword:               "secure-password",
		DBSSLMode:                "require",
		Port:                     "8080",
		DBConnMaxLifetimeMinutes: 1,
		RedisURL:                 "redis://localhost:6379",
		TracingSamplerRatio:      1,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateRanges(t *testing.T) {
	c := validConfig()
	c.TracingSamplerRatio = 1.5
	assert.Error(t, c.Validate())

	c = validConfig()
	c.DefaultStorageQuota = -1
	assert.Error(t, c.Validate())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("BCRYPT_WORK", "12")
	t.Setenv("DEFAULT_STORAGE_QUOTA", "2000")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "12", c.BcryptWork)
	assert.Equal(t, int64(2000), c.DefaultStorageQuota)
	assert.Equal(t, "hybrid", c.DBSchemaMode)
}

func TestLoadConfig_InvalidBcryptWorkIsNotFatal(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "development")
	t.Setenv("BCRYPT_WORK", "99")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "99", c.BcryptWork)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "development")
	t.Setenv("ROOT_ADMIN_USERNAME", "placeholder")
	require.NoError(t, os.Unsetenv("ROOT_ADMIN_USERNAME"))
	t.Setenv("AUTH_RATE_LIMIT", "3")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("ROOT_ADMIN_USERNAME=dotenv-admin\nAUTH_RATE_LIMIT=50\n"), 0o600))
	t.Chdir(dir)

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "dotenv-admin", c.RootAdminUsername)
	assert.Equal(t, 3, c.AuthRateLimit, "process environment overrides .env")
}
