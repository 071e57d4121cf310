package access

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/config"
	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/models"
)

const (
	cookieName = "folio_session"
	userIDKey  = "user_id"
)

// ErrInvalidCredentials covers unknown users and wrong passwords alike
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserStore is the slice of the persistence gateway the authenticator needs
type UserStore interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Authenticator resolves requests to sessions, either from the signed session
// cookie or from HTTP Basic credentials.
type Authenticator struct {
	users   UserStore
	cookies *sessions.CookieStore
	logger  *zap.Logger
}

// NewAuthenticator builds a cookie store keyed by the configured secret. An
// empty secret gets a random key, so sessions do not survive a restart.
func NewAuthenticator(users UserStore, cfg config.ServerConfig, logger *zap.Logger) (*Authenticator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("access")

	key := []byte(cfg.SessionSecret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate session key: %w", err)
		}
		logger.Warn("No session secret configured, using an ephemeral key")
	}

	maxAge := cfg.SessionMaxAge
	if maxAge <= 0 {
		maxAge = config.DefaultConfig().Server.SessionMaxAge
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(store.Options.MaxAge)

	return &Authenticator{users: users, cookies: store, logger: logger}, nil
}

// Authenticate returns the session behind r. Basic credentials win over the
// cookie when both are present. Bad credentials and unknown users deny with a
// nil error; a failing user store is returned as an error.
func (a *Authenticator) Authenticate(r *http.Request) (models.Session, bool, error) {
	if username, password, ok := r.BasicAuth(); ok {
		user, err := a.verify(r.Context(), username, password)
		if errors.Is(err, ErrInvalidCredentials) {
			return models.Session{}, false, nil
		}
		if err != nil {
			return models.Session{}, false, err
		}
		return models.SessionFor(user), true, nil
	}

	sess, err := a.cookies.Get(r, cookieName)
	if err != nil {
		// tampered or signed with an old key
		a.logger.Debug("Rejected session cookie", zap.Error(err))
		return models.Session{}, false, nil
	}
	id, ok := sess.Values[userIDKey].(uint)
	if !ok || id == 0 {
		return models.Session{}, false, nil
	}

	user, err := a.users.GetUser(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("failed to load session user %d: %w", id, err)
	}
	return models.SessionFor(user), true, nil
}

// Login checks credentials and writes the session cookie
func (a *Authenticator) Login(w http.ResponseWriter, r *http.Request, username, password string) (*models.User, error) {
	user, err := a.verify(r.Context(), username, password)
	if err != nil {
		return nil, err
	}

	sess, _ := a.cookies.New(r, cookieName)
	sess.Values[userIDKey] = user.ID
	if err := sess.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	a.logger.Info("User signed in", zap.String("username", user.Username))
	return user, nil
}

// Logout expires the session cookie
func (a *Authenticator) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := a.cookies.New(r, cookieName)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func (a *Authenticator) verify(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := a.users.GetUserByUsername(ctx, username)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

type sessionKey struct{}

// WithSession stores the resolved session on ctx
func WithSession(ctx context.Context, sess models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFrom returns the session stored by WithSession
func SessionFrom(ctx context.Context) (models.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(models.Session)
	return sess, ok
}
