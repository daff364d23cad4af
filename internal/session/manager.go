// Package session owns the authenticated user and the token lifecycle of the
// terminal client.
package session

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/client"
	"github.com/adanyl0v/go-tasks/internal/models"
)

type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Route is the screen the controller should show for the current state.
type Route string

const (
	RouteLoading Route = "loading"
	RouteLogin   Route = "login"
	RouteTasks   Route = "tasks"
)

type Manager struct {
	logger   zerolog.Logger
	auth     *client.AuthService
	tokens   client.TokenStore
	validate *validator.Validate

	mu    sync.RWMutex
	state State
	user  *models.User
}

// NewManager binds a manager to c. A failed token refresh on c moves the
// manager to StateUnauthenticated.
func NewManager(logger zerolog.Logger, c *client.Client) *Manager {
	m := &Manager{
		logger:   logger,
		auth:     client.NewAuthService(c),
		tokens:   c.Tokens(),
		validate: newValidator(),
		state:    StateLoading,
	}
	c.OnSessionExpired(m.expire)
	return m
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns a copy of the authenticated user, or nil.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

func (m *Manager) Route() Route {
	switch m.State() {
	case StateAuthenticated:
		return RouteTasks
	case StateUnauthenticated:
		return RouteLogin
	default:
		return RouteLoading
	}
}

// Start resolves the initial state from persisted tokens.
func (m *Manager) Start(ctx context.Context) error {
	tokens := m.tokens.Tokens()
	if tokens.AccessToken == "" && tokens.RefreshToken == "" {
		m.setUnauthenticated()
		m.logger.Info().Msg("no stored session")
		return nil
	}

	user, err := m.auth.Me(ctx)
	if err != nil {
		m.logger.Error().
			Err(err).
			Msg("failed to restore session")
		m.setUnauthenticated()
		return err
	}

	m.setAuthenticated(user)
	m.logger.Info().
		Str("user_id", user.ID).
		Msg("restored session")
	return nil
}

func (m *Manager) Login(ctx context.Context, form LoginForm) error {
	err := validateForm(m.validate, form)
	if err != nil {
		return err
	}

	_, err = m.auth.Login(ctx, models.UserLogin{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		m.logger.Error().
			Err(err).
			Str("email", form.Email).
			Msg("failed to login")
		return err
	}

	user, err := m.auth.Me(ctx)
	if err != nil {
		m.logger.Error().
			Err(err).
			Msg("failed to fetch current user")
		_ = m.tokens.Clear()
		m.setUnauthenticated()
		return err
	}

	m.setAuthenticated(user)
	m.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return nil
}

// Register creates the account and logs it in.
func (m *Manager) Register(ctx context.Context, form RegisterForm) error {
	err := validateForm(m.validate, form)
	if err != nil {
		return err
	}

	user, err := m.auth.Register(ctx, models.UserRegister{
		Email:    form.Email,
		Username: form.Username,
		Password: form.Password,
	})
	if err != nil {
		m.logger.Error().
			Err(err).
			Str("email", form.Email).
			Msg("failed to register")
		return err
	}
	m.logger.Debug().
		Str("user_id", user.ID).
		Msg("registered user")

	return m.Login(ctx, LoginForm{Email: form.Email, Password: form.Password})
}

// Logout revokes the session on a best-effort basis. Local state is always
// cleared.
func (m *Manager) Logout(ctx context.Context) {
	err := m.auth.Logout(ctx)
	if err != nil {
		m.logger.Warn().
			Err(err).
			Msg("failed to revoke session")
	}
	m.setUnauthenticated()
	m.logger.Info().Msg("logged out")
}

// UpdateProfile sends the fields of form that differ from the current user.
func (m *Manager) UpdateProfile(ctx context.Context, form ProfileForm) (*models.User, error) {
	snapshot := m.User()
	if snapshot == nil {
		return nil, client.ErrSessionExpired
	}

	update, err := DiffProfile(*snapshot, form)
	if err != nil {
		return nil, err
	}
	if update.Email != nil {
		if err = m.validate.Var(*update.Email, "required,email"); err != nil {
			return nil, &ValidationError{Field: "Email", Message: "Invalid email address"}
		}
	}
	if update.Username != nil {
		if err = validateForm(m.validate, struct {
			Username string `validate:"required,min=3,max=50,username"`
		}{*update.Username}); err != nil {
			return nil, err
		}
	}

	user, err := m.auth.UpdateProfile(ctx, update)
	if err != nil {
		m.logger.Error().
			Err(err).
			Msg("failed to update profile")
		return nil, err
	}

	m.mu.Lock()
	if m.state == StateAuthenticated {
		m.user = user
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("user_id", user.ID).
		Msg("updated profile")
	return user, nil
}

func (m *Manager) expire() {
	m.setUnauthenticated()
	m.logger.Warn().Msg("session expired")
}

func (m *Manager) setAuthenticated(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAuthenticated
	m.user = user
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateUnauthenticated
	m.user = nil
}
