package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/access"
	"github.com/folio-site/folio/internal/config"
	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/models"
)

type testEnv struct {
	handler http.Handler
	store   *db.Store
	users   *db.Store
}

func openStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func addUser(t *testing.T, store *db.Store, username, password string, role models.Role) {
	t.Helper()
	hash, err := access.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(context.Background(), &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}))
}

// newTestEnv keeps users in their own database so the board store can be
// broken without breaking authentication
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return buildEnv(t, openStore(t), openStore(t))
}

// newSharedEnv serves users and the board from one database, as serve does
func newSharedEnv(t *testing.T) *testEnv {
	t.Helper()
	store := openStore(t)
	return buildEnv(t, store, store)
}

func buildEnv(t *testing.T, store, users *db.Store) *testEnv {
	t.Helper()
	addUser(t, users, "sam", "admin-pw", models.RoleAdmin)
	addUser(t, users, "alex", "fiancee-pw", models.RoleFiancee)

	cfg := config.ServerConfig{SessionSecret: "0123456789abcdef0123456789abcdef", SessionMaxAge: time.Hour}
	auth, err := access.NewAuthenticator(users, cfg, zap.NewNop())
	require.NoError(t, err)

	board := kanban.NewService(store, nil, zap.NewNop())
	srv := NewServer(cfg, board, store, auth, nil, zap.NewNop())
	return &testEnv{handler: srv.Handler(), store: store, users: users}
}

type caller struct {
	username, password string
}

var (
	admin   = &caller{"sam", "admin-pw"}
	fiancee = &caller{"alex", "fiancee-pw"}
)

func (e *testEnv) do(t *testing.T, who *caller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if who != nil {
		req.SetBasicAuth(who.username, who.password)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) columns(t *testing.T) map[string]uint {
	t.Helper()
	rec := e.do(t, admin, http.MethodGet, "/api/kanban/columns", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ids := map[string]uint{}
	for _, c := range decode[[]models.Column](t, rec) {
		ids[c.Name] = c.ID
	}
	return ids
}

func TestKanban_RequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/kanban/columns"},
		{http.MethodPost, "/api/kanban/columns"},
		{http.MethodGet, "/api/kanban/tickets"},
		{http.MethodPost, "/api/kanban/tickets"},
		{http.MethodPut, "/api/kanban/tickets/1/move"},
		{http.MethodPut, "/api/kanban/tickets/1"},
		{http.MethodPost, "/api/kanban/tickets/1/comments"},
		{http.MethodDelete, "/api/kanban/tickets/1"},
	}
	for _, p := range paths {
		rec := env.do(t, nil, p.method, p.path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, p.path)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	}

	rec := env.do(t, &caller{"sam", "wrong"}, http.MethodGet, "/api/kanban/tickets", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestKanban_TicketLifecycle(t *testing.T) {
	env := newTestEnv(t)
	cols := env.columns(t)

	rec := env.do(t, fiancee, http.MethodPost, "/api/kanban/tickets", map[string]any{
		"title":    "Fix bug",
		"priority": "high",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ticket := decode[models.Ticket](t, rec)
	assert.Equal(t, cols["To Do"], *ticket.ColumnID)
	assert.Equal(t, models.PriorityHigh, ticket.Priority)
	assert.Equal(t, "alex", ticket.CreatedByName)

	rec = env.do(t, fiancee, http.MethodPut, "/api/kanban/tickets/"+itoa(ticket.ID)+"/move", map[string]any{
		"column_id": cols["Done"],
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[models.Ticket](t, rec)
	assert.Equal(t, cols["Done"], *moved.ColumnID)

	rec = env.do(t, admin, http.MethodPost, "/api/kanban/tickets/"+itoa(ticket.ID)+"/comments", map[string]any{
		"content": "Looks good",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	comment := decode[models.Comment](t, rec)
	assert.Equal(t, "sam", comment.Author)

	rec = env.do(t, admin, http.MethodPut, "/api/kanban/tickets/"+itoa(ticket.ID), map[string]any{
		"title":    "Fix bug for real",
		"priority": "low",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Fix bug for real", decode[models.Ticket](t, rec).Title)

	rec = env.do(t, admin, http.MethodGet, "/api/kanban/tickets/"+itoa(ticket.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[kanban.TicketDetail](t, rec)
	assert.Equal(t, "Done", detail.ColumnName)
	require.Len(t, detail.Comments, 1)
	require.Len(t, detail.Activity, 3)
	assert.Equal(t, `alex moved the ticket from "To Do" to "Done"`, detail.Activity[1].Details)

	rec = env.do(t, admin, http.MethodDelete, "/api/kanban/tickets/"+itoa(ticket.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = env.do(t, admin, http.MethodGet, "/api/kanban/tickets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Ticket](t, rec))
}

func TestKanban_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"empty title", http.MethodPost, "/api/kanban/tickets", map[string]any{"title": "  "}},
		{"bad priority", http.MethodPost, "/api/kanban/tickets", map[string]any{"title": "x", "priority": "urgent"}},
		{"malformed json", http.MethodPost, "/api/kanban/tickets", "{"},
		{"empty column name", http.MethodPost, "/api/kanban/columns", map[string]any{"name": ""}},
		{"bad id", http.MethodPut, "/api/kanban/tickets/abc/move", map[string]any{"column_id": 1}},
		{"missing column id", http.MethodPut, "/api/kanban/tickets/1/move", map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, admin, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "validation_failed", decode[errorBody](t, rec).Code)
		})
	}
}

func TestKanban_NotFound(t *testing.T) {
	env := newTestEnv(t)
	cols := env.columns(t)

	rec := env.do(t, admin, http.MethodPut, "/api/kanban/tickets/404/move", map[string]any{"column_id": cols["Done"]})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, rec).Code)

	rec = env.do(t, admin, http.MethodPost, "/api/kanban/tickets/404/comments", map[string]any{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, admin, http.MethodPost, "/api/kanban/tickets", map[string]any{"title": "x", "column_id": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, admin, http.MethodGet, "/api/kanban/tickets/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKanban_StoreFailureLeaksNothing(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Close())

	rec := env.do(t, admin, http.MethodGet, "/api/kanban/tickets", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())

	rec = env.do(t, admin, http.MethodPost, "/api/kanban/tickets", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())

	rec = env.do(t, nil, http.MethodGet, "/health/db", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSharedStoreOutageIsNotUnauthorized(t *testing.T) {
	env := newSharedEnv(t)

	rec := env.do(t, admin, http.MethodGet, "/api/kanban/tickets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, env.store.Close())

	for _, who := range []*caller{admin, fiancee} {
		rec = env.do(t, who, http.MethodGet, "/api/kanban/tickets", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	}

	rec = env.do(t, admin, http.MethodPut, "/api/home-sections", []map[string]any{{"title": "x", "content": "y"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())

	// no credentials never reach the store
	rec = env.do(t, nil, http.MethodGet, "/api/kanban/tickets", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nil, http.MethodGet, "/health/db", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","db":"connected"}`, rec.Body.String())

	rec = env.do(t, nil, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "folio_http_requests_total")
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nil, http.MethodPost, "/api/login", map[string]any{"username": "alex", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, nil, http.MethodPost, "/api/login", map[string]any{"username": "alex", "password": "fiancee-pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/kanban/columns", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, nil, http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHomeSections(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nil, http.MethodGet, "/api/home-sections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	seeded := decode[[]models.HomeSection](t, rec)
	require.Len(t, seeded, 3)
	assert.NotEmpty(t, seeded[0].ContentHTML)

	body := []map[string]any{
		{"title": "About", "content": "Hello **world** <script>alert(1)</script>"},
		{"title": "Hidden", "content": "secret", "enabled": false},
	}
	rec = env.do(t, fiancee, http.MethodPut, "/api/home-sections", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Forbidden"}`, rec.Body.String())

	rec = env.do(t, nil, http.MethodPut, "/api/home-sections", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, admin, http.MethodPut, "/api/home-sections", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, nil, http.MethodGet, "/api/home-sections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sections := decode[[]models.HomeSection](t, rec)
	require.Len(t, sections, 1)
	assert.Equal(t, "About", sections[0].Title)
	assert.True(t, sections[0].Enabled)
	assert.Equal(t, defaultSectionIcon, sections[0].Icon)
	assert.Contains(t, sections[0].ContentHTML, "<strong>world</strong>")
	assert.NotContains(t, sections[0].ContentHTML, "<script>")

	rec = env.do(t, admin, http.MethodPut, "/api/home-sections", []map[string]any{
		{"title": "Ok", "content": "fine"},
		{"title": "Broken", "content": "   "},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, nil, http.MethodGet, "/api/home-sections", nil)
	assert.Len(t, decode[[]models.HomeSection](t, rec), 1)
}

func TestProjects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nil, http.MethodPost, "/api/projects", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, admin, http.MethodPost, "/api/projects", map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, admin, http.MethodPost, "/api/projects", map[string]any{"title": "x", "github_link": "javascript:alert(1)"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, admin, http.MethodPost, "/api/projects", map[string]any{
		"title":       "Folio",
		"description": `<p onclick="x()">Portfolio <b>site</b></p>`,
		"github_link": "https://github.com/folio-site/folio",
		"img2":        "/static/img/folio.png",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[models.Project](t, rec)
	assert.NotContains(t, created.Description, "onclick")
	assert.Contains(t, created.Description, "<b>site</b>")

	rec = env.do(t, admin, http.MethodPost, "/api/projects", map[string]any{"title": "Second"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, nil, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	projects := decode[[]models.Project](t, rec)
	require.Len(t, projects, 2)
	assert.Equal(t, "Second", projects[0].Title)

	rec = env.do(t, admin, http.MethodPut, "/api/projects/"+itoa(created.ID), map[string]any{"title": "Folio v2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, nil, http.MethodGet, "/api/projects/"+itoa(created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Folio v2", decode[models.Project](t, rec).Title)

	rec = env.do(t, nil, http.MethodGet, "/api/projects/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, admin, http.MethodPut, "/api/projects/999", map[string]any{"title": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjects_FirstInvalidLinkIsReported(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"title":       "Folio",
		"img4":        "ftp://example.com/a.png",
		"video_url":   "not a url",
		"github_link": "javascript:alert(1)",
	}
	for i := 0; i < 20; i++ {
		rec := env.do(t, admin, http.MethodPost, "/api/projects", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid github_link: must be an http(s) URL or a site path", decode[errorBody](t, rec).Error)
	}

	delete(body, "github_link")
	rec := env.do(t, admin, http.MethodPost, "/api/projects", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid video_url: must be an http(s) URL or a site path", decode[errorBody](t, rec).Error)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
