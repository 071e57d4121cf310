package access

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/config"
	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/models"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func TestRoleGate(t *testing.T) {
	gate := RoleGate{}
	tests := []struct {
		name    string
		sess    models.Session
		board   bool
		content bool
	}{
		{"admin", models.Session{UserID: 1, Username: "sam", Role: models.RoleAdmin}, true, true},
		{"fiancee", models.Session{UserID: 2, Username: "alex", Role: models.RoleFiancee}, true, false},
		{"unknown role", models.Session{UserID: 3, Username: "eve", Role: "guest"}, false, false},
		{"anonymous", models.Session{}, false, false},
		{"anonymous with role", models.Session{Role: models.RoleAdmin}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.board, gate.CanAccessBoard(tt.sess))
			assert.Equal(t, tt.content, gate.CanManageContent(tt.sess))
		})
	}
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFrom(context.Background())
	assert.False(t, ok)

	sess := models.Session{UserID: 4, Username: "sam", Role: models.RoleAdmin}
	got, ok := SessionFrom(WithSession(context.Background(), sess))
	require.True(t, ok)
	assert.Equal(t, sess, got)
}

func newAuthenticator(t *testing.T) (*Authenticator, *models.User, *db.Store) {
	t.Helper()
	store, err := db.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	user := &models.User{Username: "alex", PasswordHash: hash, Role: models.RoleFiancee}
	require.NoError(t, store.CreateUser(context.Background(), user))

	auth, err := NewAuthenticator(store, config.ServerConfig{
		SessionSecret: "0123456789abcdef0123456789abcdef",
		SessionMaxAge: time.Hour,
	}, zap.NewNop())
	require.NoError(t, err)
	return auth, user, store
}

func TestAuthenticator_BasicAuth(t *testing.T) {
	auth, user, _ := newAuthenticator(t)

	req := httptest.NewRequest(http.MethodGet, "/api/kanban/tickets", nil)
	req.SetBasicAuth("alex", "s3cret")
	sess, ok, err := auth.Authenticate(req)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, models.RoleFiancee, sess.Role)

	req = httptest.NewRequest(http.MethodGet, "/api/kanban/tickets", nil)
	req.SetBasicAuth("alex", "wrong")
	_, ok, err = auth.Authenticate(req)
	assert.NoError(t, err)
	assert.False(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/api/kanban/tickets", nil)
	req.SetBasicAuth("nobody", "s3cret")
	_, ok, err = auth.Authenticate(req)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthenticator_NoCredentials(t *testing.T) {
	auth, _, _ := newAuthenticator(t)
	_, ok, err := auth.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthenticator_LoginCookieRoundTrip(t *testing.T) {
	auth, user, _ := newAuthenticator(t)

	rec := httptest.NewRecorder()
	_, err := auth.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil), "alex", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, rec.Result().Cookies())

	rec = httptest.NewRecorder()
	got, err := auth.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil), "alex", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/api/kanban/tickets", nil)
	req.AddCookie(cookies[0])
	sess, ok, err := auth.Authenticate(req)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alex", sess.Username)

	rec = httptest.NewRecorder()
	require.NoError(t, auth.Logout(rec, req))
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].MaxAge < 0)
}

func TestAuthenticator_TamperedCookie(t *testing.T) {
	auth, _, _ := newAuthenticator(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "forged"})
	_, ok, err := auth.Authenticate(req)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthenticator_StoreFailureIsAnError(t *testing.T) {
	auth, user, store := newAuthenticator(t)

	rec := httptest.NewRecorder()
	_, err := auth.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil), "alex", "s3cret")
	require.NoError(t, err)
	cookie := rec.Result().Cookies()[0]

	require.NoError(t, store.Close())

	req := httptest.NewRequest(http.MethodGet, "/api/kanban/tickets", nil)
	req.SetBasicAuth("alex", "s3cret")
	_, ok, err := auth.Authenticate(req)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/api/kanban/tickets", nil)
	req.AddCookie(cookie)
	_, ok, err = auth.Authenticate(req)
	assert.ErrorContains(t, err, fmt.Sprintf("session user %d", user.ID))
	assert.False(t, ok)
}
