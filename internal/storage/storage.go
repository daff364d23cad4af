// Package storage persists users, sessions, tasks and labels.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/go-tasks/internal/models"
)

var (
	ErrNotFound       = errors.New("storage: not found")
	ErrEmailTaken     = errors.New("storage: email taken")
	ErrUsernameTaken  = errors.New("storage: username taken")
	ErrLabelNameTaken = errors.New("storage: label name taken")
)

// TaskFilter narrows ListTasks. Nil and empty fields do not filter.
type TaskFilter struct {
	Priority  models.Priority
	Completed *bool
	LabelIDs  []string
	Overdue   *bool
	// Now is the reference time of the overdue predicate.
	Now    time.Time
	SortBy string
	Order  string
}

const (
	SortByCreatedAt = "created_at"
	SortByDeadline  = "deadline"
	SortByPriority  = "priority"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

type Repository interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user models.User) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) error

	CreateSession(ctx context.Context, session models.Session) error
	GetSessionByID(ctx context.Context, id string) (models.Session, error)
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (models.Session, error)
	// RotateSession replaces the refresh token of an unrevoked session
	// still holding oldRefreshToken. It returns ErrNotFound otherwise.
	RotateSession(ctx context.Context, sessionID, oldRefreshToken string, next models.Session) error
	// RevokeSession revokes the user's session holding refreshToken.
	RevokeSession(ctx context.Context, userID, refreshToken string) error

	CreateTask(ctx context.Context, task models.Task) error
	GetTask(ctx context.Context, userID, id string) (models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) error
	DeleteTask(ctx context.Context, userID, id string) error
	ListTasks(ctx context.Context, userID string, filter TaskFilter) ([]models.Task, error)

	CreateLabel(ctx context.Context, label models.Label) error
	GetLabel(ctx context.Context, userID, id string) (models.Label, error)
	UpdateLabel(ctx context.Context, label models.Label) error
	// DeleteLabel removes the label and detaches it from every task of the
	// same user in one step.
	DeleteLabel(ctx context.Context, userID, id string) error
	ListLabels(ctx context.Context, userID string) ([]models.Label, error)
	// CountLabels returns how many of ids are labels owned by userID.
	CountLabels(ctx context.Context, userID string, ids []string) (int, error)
}
