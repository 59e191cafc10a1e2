// Package session holds the signed-in user and decides when the session ends.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/pkg/logging"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return "anonymous"
}

var ErrBusy = errors.New("session: login already in progress")

// Authenticator is the part of the API client the session drives.
type Authenticator interface {
	Register(ctx context.Context, req transport.RegisterRequest) (*transport.User, error)
	Login(ctx context.Context, req transport.LoginRequest) (*transport.TokenResponse, error)
	SetToken(token string)
}

type Manager struct {
	store  Store
	api    Authenticator
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	token     string
	user      *transport.User
	listeners []func(reason string)
}

// NewManager restores a persisted session synchronously.
func NewManager(store Store, api Authenticator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	m := &Manager{store: store, api: api, logger: logger}

	snap, err := store.Load()
	if err != nil {
		logger.Warn("session_restore_failed", "error", err)
		_ = store.Clear()
		return m
	}
	if snap.Valid() {
		m.state = Authenticated
		m.token = snap.Token
		m.user = snap.User
		api.SetToken(snap.Token)
		logger.Debug("session_restored", "user_id", snap.User.ID)
	}
	return m
}

// OnEnd registers fn to run whenever the session ends.
func (m *Manager) OnEnd(fn func(reason string)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) User() *transport.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == Authenticated && m.user != nil && m.user.IsAdmin
}

func (m *Manager) Register(ctx context.Context, req transport.RegisterRequest) (*transport.User, error) {
	return m.api.Register(ctx, req)
}

func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.mu.Lock()
	if m.state == Authenticating {
		m.mu.Unlock()
		return ErrBusy
	}
	m.state = Authenticating
	m.mu.Unlock()

	res, err := m.api.Login(ctx, transport.LoginRequest{Email: email, Password: password})
	if err != nil {
		m.mu.Lock()
		m.state = Anonymous
		m.mu.Unlock()
		m.logger.Info("login_failed", "error", err)
		return err
	}

	user := res.User
	if err := m.store.Save(Snapshot{Token: res.AccessToken, User: &user}); err != nil {
		m.logger.Warn("session_persist_failed", "error", err)
	}
	m.api.SetToken(res.AccessToken)

	m.mu.Lock()
	m.state = Authenticated
	m.token = res.AccessToken
	m.user = &user
	m.mu.Unlock()
	m.logger.Info("login_success", "user_id", user.ID, "is_admin", user.IsAdmin)
	return nil
}

func (m *Manager) Logout() {
	m.end("logout")
}

// HandleUnauthorized ends the session after a 401. It is ignored while a
// login is in flight, since that 401 is the login's own answer.
func (m *Manager) HandleUnauthorized() {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	if state != Authenticated {
		return
	}
	m.end("unauthorized")
}

func (m *Manager) end(reason string) {
	m.mu.Lock()
	if m.state == Anonymous && m.token == "" {
		m.mu.Unlock()
		return
	}
	m.state = Anonymous
	m.token = ""
	m.user = nil
	listeners := append([]func(string){}, m.listeners...)
	m.mu.Unlock()

	m.api.SetToken("")
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("session_clear_failed", "error", err)
	}
	m.logger.Info("session_ended", "reason", reason)
	for _, fn := range listeners {
		fn(reason)
	}
}
