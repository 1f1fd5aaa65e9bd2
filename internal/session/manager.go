// Package session authenticates ledger users and keeps the current login
// across CLI runs as a signed token in the session document.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/cryptox"
	"github.com/dmitrijs2005/officeledger/internal/logging"
	"github.com/dmitrijs2005/officeledger/internal/models"
	"github.com/dmitrijs2005/officeledger/internal/persist"
)

// Users is the part of the ledger the session needs.
type Users interface {
	FindUser(id string) (models.User, bool)
	FindUserByUsername(username string) (models.User, bool)
}

// Store persists the session document.
type Store interface {
	Load(ctx context.Context) (*persist.Session, error)
	Save(ctx context.Context, s persist.Session) error
	Clear(ctx context.Context) error
}

type Manager struct {
	users  Users
	store  Store
	secret []byte
	ttl    time.Duration
	logger logging.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *models.User
}

func NewManager(users Users, store Store, secret []byte, ttl time.Duration, logger logging.Logger) *Manager {
	return &Manager{
		users:  users,
		store:  store,
		secret: secret,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Login checks the credentials against the ledger and persists a new token.
func (m *Manager) Login(ctx context.Context, username, password string) (models.User, error) {
	u, ok := m.users.FindUserByUsername(username)
	if !ok || !cryptox.CheckPassword(u.Password, password) {
		m.logger.Info(ctx, "login rejected", "username", username)
		return models.User{}, common.ErrInvalidCredentials
	}

	token, err := GenerateToken(u.ID, string(u.Role), m.secret, m.now(), m.ttl)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	if err := m.store.Save(ctx, persist.Session{User: u, Token: token}); err != nil {
		return models.User{}, fmt.Errorf("failed to save session: %w", err)
	}

	m.set(&u)
	m.logger.Info(ctx, "logged in", "user", u.Username, "role", u.Role)
	return u, nil
}

// Restore resumes a persisted session. It returns ErrUnauthorized when there
// is none; a session whose token fails verification or whose user no longer
// exists is cleared and reported as ErrInvalidToken.
func (m *Manager) Restore(ctx context.Context) (models.User, error) {
	sess, err := m.store.Load(ctx)
	if err != nil {
		return models.User{}, err
	}
	if sess == nil {
		return models.User{}, common.ErrUnauthorized
	}

	claims, err := ParseToken(sess.Token, m.secret, m.now())
	if err != nil {
		m.logger.Info(ctx, "stored session rejected", "err", err)
		return models.User{}, m.drop(ctx, err)
	}
	u, ok := m.users.FindUser(claims.Subject)
	if !ok {
		return models.User{}, m.drop(ctx, fmt.Errorf("%w: user %s no longer exists", common.ErrInvalidToken, claims.Subject))
	}

	m.set(&u)
	return u, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	m.set(nil)
	return m.store.Clear(ctx)
}

// Current returns the logged-in user, refreshed from the ledger so role
// changes apply immediately.
func (m *Manager) Current() (models.User, bool) {
	m.mu.RLock()
	cur := m.current
	m.mu.RUnlock()
	if cur == nil {
		return models.User{}, false
	}
	if u, ok := m.users.FindUser(cur.ID); ok {
		return u, true
	}
	return models.User{}, false
}

func (m *Manager) RequireUser() (models.User, error) {
	u, ok := m.Current()
	if !ok {
		return models.User{}, common.ErrUnauthorized
	}
	return u, nil
}

func (m *Manager) RequireAdmin() (models.User, error) {
	u, err := m.RequireUser()
	if err != nil {
		return models.User{}, err
	}
	if !u.IsAdmin() {
		return models.User{}, fmt.Errorf("%s is not an admin: %w", u.Username, common.ErrForbidden)
	}
	return u, nil
}

func (m *Manager) set(u *models.User) {
	m.mu.Lock()
	m.current = u
	m.mu.Unlock()
}

func (m *Manager) drop(ctx context.Context, cause error) error {
	m.set(nil)
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn(ctx, "failed to clear session", "err", err)
	}
	return cause
}
