// Package session holds the signed-in user of the client process and persists it locally.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/quiz-auth/internal/client/api"
	"github.com/oksasatya/quiz-auth/internal/client/storage"
	"github.com/oksasatya/quiz-auth/internal/domain/entity"
)

type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusError         Status = "error"
)

// ErrRoleMismatch is returned when valid credentials belong to the other portal's role.
var ErrRoleMismatch = errors.New("role mismatch")

// RoleMismatchError carries the role the account actually has.
type RoleMismatchError struct {
	Actual entity.Role
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("This account is registered as a %s. Please use the %s portal.", e.Actual, e.Actual)
}

func (e *RoleMismatchError) Unwrap() error { return ErrRoleMismatch }

// Auth is the subset of the API client the manager needs.
type Auth interface {
	Register(ctx context.Context, name, email, password string, role entity.Role) (*api.AuthResult, error)
	Login(ctx context.Context, email, password string) (*api.AuthResult, error)
}

// State is a snapshot of the session.
type State struct {
	Status Status
	User   *entity.PublicUser
	Token  string
	Error  string
}

func (s State) IsLoading() bool { return s.Status == StatusLoading }

// IsAuthenticated reports whether a user is signed in. A failed attempt keeps the previous session.
func (s State) IsAuthenticated() bool { return s.User != nil && s.Token != "" }

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Manager owns the session state. Callers are expected not to overlap Login/Register calls.
type Manager struct {
	auth   Auth
	store  storage.Store
	logger *logrus.Logger

	mu     sync.Mutex
	state  State
	nextID int
	subs   map[int]func(State)
}

// New restores a previously persisted session. A missing or unreadable one starts anonymous.
func New(ctx context.Context, auth Auth, store storage.Store, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	m := &Manager{
		auth:   auth,
		store:  store,
		logger: logger,
		state:  State{Status: StatusAnonymous},
		subs:   make(map[int]func(State)),
	}
	if u, tok, ok := m.restore(ctx); ok {
		m.state = State{Status: StatusAuthenticated, User: u, Token: tok}
	}
	return m
}

func (m *Manager) restore(ctx context.Context) (*entity.PublicUser, string, bool) {
	tok, okTok, err := m.store.Get(ctx, storage.KeyToken)
	if err != nil {
		m.logger.WithError(err).Warn("read persisted token")
		return nil, "", false
	}
	raw, okUser, err := m.store.Get(ctx, storage.KeyUser)
	if err != nil {
		m.logger.WithError(err).Warn("read persisted user")
		return nil, "", false
	}
	if !okTok || !okUser || tok == "" {
		return nil, "", false
	}
	var u entity.PublicUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		m.logger.WithError(err).Warn("discarding unreadable persisted user")
		return nil, "", false
	}
	return &u, tok, true
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Token returns the current bearer token, "" when signed out. Usable as an api.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Token
}

// Subscribe registers fn to be called with each new state. The returned func unregisters it.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) set(s State) {
	m.mu.Lock()
	m.apply(s)
}

// transition moves to status keeping the current user and token.
func (m *Manager) transition(status Status, msg string) {
	m.mu.Lock()
	s := m.state
	s.Status, s.Error = status, msg
	m.apply(s)
}

// apply stores s and notifies subscribers. Called with mu held; releases it.
func (m *Manager) apply(s State) {
	m.state = s
	snap := s.clone()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}

// Login signs in and persists the session, unless the account's role differs from expectedRole.
func (m *Manager) Login(ctx context.Context, email, password string, expectedRole entity.Role) error {
	m.transition(StatusLoading, "")

	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return m.fail(err)
	}
	if res.User.Role != expectedRole {
		return m.fail(&RoleMismatchError{Actual: res.User.Role})
	}
	return m.establish(ctx, res)
}

// Register creates the account and signs in as it.
func (m *Manager) Register(ctx context.Context, name, email, password string, role entity.Role) error {
	m.transition(StatusLoading, "")

	res, err := m.auth.Register(ctx, name, email, password, role)
	if err != nil {
		return m.fail(err)
	}
	return m.establish(ctx, res)
}

// Logout clears the persisted session and returns to anonymous. It always succeeds.
func (m *Manager) Logout(ctx context.Context) {
	m.clear(ctx)
	m.set(State{Status: StatusAnonymous})
}

func (m *Manager) establish(ctx context.Context, res *api.AuthResult) error {
	raw, err := json.Marshal(res.User)
	if err != nil {
		return m.fail(fmt.Errorf("encode user: %w", err))
	}
	if err := m.persist(ctx, res.Token, string(raw)); err != nil {
		// a half-written session must not survive a restart
		m.clear(ctx)
		err = fmt.Errorf("persist session: %w", err)
		m.set(State{Status: StatusError, Error: err.Error()})
		return err
	}

	u := res.User
	m.set(State{Status: StatusAuthenticated, User: &u, Token: res.Token})
	m.logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Debug("session established")
	return nil
}

func (m *Manager) persist(ctx context.Context, token, user string) error {
	if err := m.store.Set(ctx, storage.KeyToken, token); err != nil {
		return err
	}
	return m.store.Set(ctx, storage.KeyUser, user)
}

func (m *Manager) clear(ctx context.Context) {
	for _, k := range []string{storage.KeyToken, storage.KeyUser} {
		if err := m.store.Delete(ctx, k); err != nil {
			m.logger.WithError(err).WithField("key", k).Warn("clear persisted session")
		}
	}
}

func (m *Manager) fail(err error) error {
	m.transition(StatusError, err.Error())
	return err
}
