package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"docvault/internal/bootstrap"
	"docvault/internal/config"
	"docvault/internal/models"
	"docvault/internal/repository"
	"docvault/internal/security"
	"docvault/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-that-is-at-least-32-characters"

type testServer struct {
	*Server
	db  *gorm.DB
	app *fiber.App
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             testJWTSecret,
		Port:                  "0",
		Env:                   "test",
		BcryptWork:            "4",
		DefaultStorageQuota:   5000,
		AuthRateLimit:         10,
		AuthRateWindowSeconds: 60,
		RootAdminUsername:     "root",
		RootAdminPassword:     "root-password",
		RootAdminEmail:        "root@example.com",
	}
}

// newTestServer builds a server over an in-memory database. redisClient may be nil.
func newTestServer(t *testing.T, redisClient *redis.Client) *testServer {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	s, err := NewServerWithDeps(testConfig(), db, redisClient)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.hub.Shutdown(context.Background()) })

	return &testServer{Server: s, db: db, app: s.App()}
}

// rootToken ensures the root administrator exists and returns a token for it.
func (ts *testServer) rootToken(t *testing.T) (*models.User, string) {
	t.Helper()
	root, err := bootstrap.EnsureRootAdmin(context.Background(), ts.config, ts.db, security.NewBcryptHasher(4))
	require.NoError(t, err)
	token, err := ts.generateToken(root)
	require.NoError(t, err)
	return root, token
}

// userToken creates a regular account and returns a token for it.
func (ts *testServer) userToken(t *testing.T, username, password string) (*models.User, string) {
	t.Helper()
	hash, err := security.NewBcryptHasher(4).Hash(password)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Password:     hash,
		Email:        username + "@example.com",
		RoleID:       models.RoleUser,
		PrivateKey:   "key",
		StorageQuota: 1,
	}
	require.NoError(t, repository.NewUserRepository(ts.db).Create(context.Background(), user))

	token, err := ts.generateToken(user)
	require.NoError(t, err)
	return user, token
}

// doJSON sends body as JSON and decodes the JSON response into a map.
func (ts *testServer) doJSON(t *testing.T, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ts.do(t, req)
}

func (ts *testServer) doForm(t *testing.T, method, path string, form url.Values) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(t, req)
}

func (ts *testServer) do(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func submitBody(username string) map[string]string {
	return map[string]string{
		"username": username,
		"password": "password123",
		"email":    username + "@example.com",
	}
}

// pendingID returns the id of the pending request for username.
func (ts *testServer) pendingID(t *testing.T, username string) string {
	t.Helper()
	req, err := repository.NewRegistrationRequestRepository(ts.db).GetPendingByUsername(context.Background(), username)
	require.NoError(t, err)
	require.NotNil(t, req, "no pending request for %s", username)
	return req.ID
}
