package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrEmailAlreadyRegistered   = errors.New("email already registered")
	ErrUsernameTaken            = errors.New("username already taken")
	ErrInvalidCredentials       = errors.New("incorrect email or password")
	ErrSessionNotFound          = errors.New("session not found")
	ErrSessionExpired           = errors.New("session expired")
	ErrInvalidRefreshToken      = errors.New("invalid refresh token")
	ErrCurrentPasswordRequired  = errors.New("current password is required to change password")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrNoFieldsToUpdate         = errors.New("no fields to update")
	ErrTaskNotFound             = errors.New("task not found")
	ErrLabelNotFound            = errors.New("label not found")
	ErrLabelAlreadyExists       = errors.New("label with this name already exists")
	ErrInvalidLabelIDs          = errors.New("invalid label ids")
)

type AuthService interface {
	// Register creates a user with a hashed password.
	//
	// It returns ErrEmailAlreadyRegistered or ErrUsernameTaken if
	// either value is already used by another user.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Login authenticates the user by email and password and starts a
	// new session with a fresh JWT token pair.
	//
	// It returns ErrInvalidCredentials if the user doesn't exist
	// or the password doesn't match.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh rotates the refresh token of the session holding it and
	// issues a new access token.
	//
	// It returns ErrSessionNotFound if no active session holds the
	// token or ErrSessionExpired if the session is expired.
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)

	// Logout revokes the user's session holding refreshToken.
	//
	// It returns ErrInvalidRefreshToken if there is no such session.
	Logout(ctx context.Context, userID, refreshToken string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type UserService interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateProfile applies the set fields of update. Changing the
	// password requires the current one.
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)
}

type SessionService interface {
	// GetActiveSession returns the session if it is neither revoked
	// nor expired.
	GetActiveSession(ctx context.Context, sessionID string) (*models.Session, error)
}

type TaskService interface {
	ListTasks(ctx context.Context, userID string, params ListTasksParams) ([]models.Task, error)
	GetTask(ctx context.Context, userID, taskID string) (*models.Task, error)
	CreateTask(ctx context.Context, userID string, data models.TaskCreate) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, data models.TaskUpdate) (*models.Task, error)
	ToggleTask(ctx context.Context, userID, taskID string) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

type LabelService interface {
	ListLabels(ctx context.Context, userID string) ([]models.Label, error)
	GetLabel(ctx context.Context, userID, labelID string) (*models.Label, error)
	CreateLabel(ctx context.Context, userID string, data models.LabelCreate) (*models.Label, error)
	UpdateLabel(ctx context.Context, userID, labelID string, data models.LabelUpdate) (*models.Label, error)
	// DeleteLabel removes the label from every task of the user as well.
	DeleteLabel(ctx context.Context, userID, labelID string) error
}

type HealthService interface {
	Ping(ctx context.Context) error
}

type RegisterParams struct {
	Email    string
	Username string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type ListTasksParams struct {
	Priority  models.Priority
	Completed *bool
	LabelIDs  []string
	Overdue   *bool
	SortBy    string
	Order     string
}

// Services bundles every service over one repository.
type Services struct {
	Auth     AuthService
	Users    UserService
	Sessions SessionService
	Tasks    TaskService
	Labels   LabelService
	Health   HealthService
}

func New(logger zerolog.Logger, repo storage.Repository, tokens *TokenIssuer) *Services {
	return &Services{
		Auth:     NewAuthService(logger, repo, tokens),
		Users:    NewUserService(logger, repo),
		Sessions: NewSessionService(logger, repo),
		Tasks:    NewTaskService(logger, repo),
		Labels:   NewLabelService(logger, repo),
		Health:   repo,
	}
}
