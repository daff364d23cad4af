package tui

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/client"
	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/session"
)

// Session is the part of *session.Manager the screens drive.
type Session interface {
	Start(ctx context.Context) error
	Login(ctx context.Context, form session.LoginForm) error
	Register(ctx context.Context, form session.RegisterForm) error
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, form session.ProfileForm) (*models.User, error)
	User() *models.User
	Route() session.Route
}

type TaskAPI interface {
	List(ctx context.Context, query client.TaskQuery) ([]models.Task, error)
	Create(ctx context.Context, data models.TaskCreate) (*models.Task, error)
	Update(ctx context.Context, id string, data models.TaskUpdate) (*models.Task, error)
	ToggleComplete(ctx context.Context, id string) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

type LabelAPI interface {
	List(ctx context.Context) ([]models.Label, error)
	Create(ctx context.Context, data models.LabelCreate) (*models.Label, error)
	Update(ctx context.Context, id string, data models.LabelUpdate) (*models.Label, error)
	Delete(ctx context.Context, id string) error
}

var (
	_ Session  = (*session.Manager)(nil)
	_ TaskAPI  = (*client.TaskService)(nil)
	_ LabelAPI = (*client.LabelService)(nil)
)

type Deps struct {
	Logger  zerolog.Logger
	Session Session
	Tasks   TaskAPI
	Labels  LabelAPI
	// Now defaults to time.Now.
	Now func() time.Time
}
