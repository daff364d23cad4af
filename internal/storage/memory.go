package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/adanyl0v/go-tasks/internal/filter"
	"github.com/adanyl0v/go-tasks/internal/models"
)

// MemoryRepository keeps everything in process memory. It backs the server
// when STORAGE=memory and end-to-end tests.
type MemoryRepository struct {
	mu sync.RWMutex

	users    map[string]models.User
	sessions map[string]models.Session
	tasks    map[string]models.Task
	labels   map[string]models.Label

	// Insertion order, used as the tie-breaker when listing.
	taskOrder  []string
	labelOrder []string
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[string]models.User),
		sessions: make(map[string]models.Session),
		tasks:    make(map[string]models.Task),
		labels:   make(map[string]models.Label),
	}
}

func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

func (r *MemoryRepository) CreateUser(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUserUnique(user); err != nil {
		return err
	}
	r.users[user.ID] = user
	return nil
}

func (r *MemoryRepository) GetUserByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r *MemoryRepository) UpdateUser(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	if err := r.checkUserUnique(user); err != nil {
		return err
	}
	r.users[user.ID] = user
	return nil
}

func (r *MemoryRepository) checkUserUnique(user models.User) error {
	for _, other := range r.users {
		if other.ID == user.ID {
			continue
		}
		if other.Email == user.Email {
			return ErrEmailTaken
		}
		if other.Username == user.Username {
			return ErrUsernameTaken
		}
	}
	return nil
}

func (r *MemoryRepository) CreateSession(_ context.Context, session models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = session
	return nil
}

func (r *MemoryRepository) GetSessionByID(_ context.Context, id string) (models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return models.Session{}, ErrNotFound
	}
	return session, nil
}

func (r *MemoryRepository) GetSessionByRefreshToken(_ context.Context, refreshToken string) (models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, session := range r.sessions {
		if session.RefreshToken == refreshToken {
			return session, nil
		}
	}
	return models.Session{}, ErrNotFound
}

func (r *MemoryRepository) RotateSession(_ context.Context, sessionID, oldRefreshToken string, next models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok || session.Revoked || session.RefreshToken != oldRefreshToken {
		return ErrNotFound
	}
	session.RefreshToken = next.RefreshToken
	session.ExpiresAt = next.ExpiresAt
	session.UpdatedAt = next.UpdatedAt
	r.sessions[sessionID] = session
	return nil
}

func (r *MemoryRepository) RevokeSession(_ context.Context, userID, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, session := range r.sessions {
		if session.UserID == userID && session.RefreshToken == refreshToken && !session.Revoked {
			session.Revoked = true
			r.sessions[id] = session
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) CreateTask(_ context.Context, task models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task.LabelIDs = slices.Clone(nonNilIDs(task.LabelIDs))
	r.tasks[task.ID] = task
	r.taskOrder = append(r.taskOrder, task.ID)
	return nil
}

func (r *MemoryRepository) GetTask(_ context.Context, userID, id string) (models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return models.Task{}, ErrNotFound
	}
	task.LabelIDs = slices.Clone(task.LabelIDs)
	return task, nil
}

func (r *MemoryRepository) UpdateTask(_ context.Context, task models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[task.ID]
	if !ok || stored.UserID != task.UserID {
		return ErrNotFound
	}
	task.CreatedAt = stored.CreatedAt
	task.LabelIDs = slices.Clone(nonNilIDs(task.LabelIDs))
	r.tasks[task.ID] = task
	return nil
}

func (r *MemoryRepository) DeleteTask(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return ErrNotFound
	}
	delete(r.tasks, id)
	r.taskOrder = slices.DeleteFunc(r.taskOrder, func(have string) bool { return have == id })
	return nil
}

func (r *MemoryRepository) ListTasks(_ context.Context, userID string, f TaskFilter) ([]models.Task, error) {
	r.mu.RLock()
	owned := make([]models.Task, 0)
	for _, id := range r.taskOrder {
		task := r.tasks[id]
		if task.UserID != userID {
			continue
		}
		task.LabelIDs = slices.Clone(task.LabelIDs)
		owned = append(owned, task)
	}
	r.mu.RUnlock()

	return filter.Apply(owned, filterOptions(f), f.Now), nil
}

func filterOptions(f TaskFilter) filter.Options {
	opts := filter.Options{
		Priority: f.Priority,
		LabelIDs: f.LabelIDs,
		SortBy:   filter.SortKey(f.SortBy),
		Order:    filter.Order(f.Order),
	}
	switch opts.SortBy {
	case filter.SortCreatedAt, filter.SortDeadline, filter.SortPriority:
	default:
		opts.SortBy = filter.SortCreatedAt
	}
	if opts.Order != filter.OrderAsc {
		opts.Order = filter.OrderDesc
	}
	if f.Completed != nil {
		opts.Completed = filter.CompletionIncomplete
		if *f.Completed {
			opts.Completed = filter.CompletionCompleted
		}
	}
	if f.Overdue != nil {
		opts.Overdue = filter.OverdueNot
		if *f.Overdue {
			opts.Overdue = filter.OverdueOnly
		}
	}
	return opts
}

func (r *MemoryRepository) CreateLabel(_ context.Context, label models.Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.labelNameTaken(label) {
		return ErrLabelNameTaken
	}
	r.labels[label.ID] = label
	r.labelOrder = append(r.labelOrder, label.ID)
	return nil
}

func (r *MemoryRepository) GetLabel(_ context.Context, userID, id string) (models.Label, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	label, ok := r.labels[id]
	if !ok || label.UserID != userID {
		return models.Label{}, ErrNotFound
	}
	return label, nil
}

func (r *MemoryRepository) UpdateLabel(_ context.Context, label models.Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.labels[label.ID]
	if !ok || stored.UserID != label.UserID {
		return ErrNotFound
	}
	if r.labelNameTaken(label) {
		return ErrLabelNameTaken
	}
	label.CreatedAt = stored.CreatedAt
	r.labels[label.ID] = label
	return nil
}

func (r *MemoryRepository) labelNameTaken(label models.Label) bool {
	for _, other := range r.labels {
		if other.ID != label.ID && other.UserID == label.UserID && other.Name == label.Name {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) DeleteLabel(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	label, ok := r.labels[id]
	if !ok || label.UserID != userID {
		return ErrNotFound
	}
	delete(r.labels, id)
	r.labelOrder = slices.DeleteFunc(r.labelOrder, func(have string) bool { return have == id })

	for taskID, task := range r.tasks {
		if task.UserID != userID || !slices.Contains(task.LabelIDs, id) {
			continue
		}
		task.LabelIDs = slices.DeleteFunc(slices.Clone(task.LabelIDs), func(have string) bool { return have == id })
		task.UpdatedAt = time.Now()
		r.tasks[taskID] = task
	}
	return nil
}

func (r *MemoryRepository) ListLabels(_ context.Context, userID string) ([]models.Label, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	labels := make([]models.Label, 0)
	for _, id := range r.labelOrder {
		if label := r.labels[id]; label.UserID == userID {
			labels = append(labels, label)
		}
	}
	slices.SortStableFunc(labels, func(a, b models.Label) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return labels, nil
}

func (r *MemoryRepository) CountLabels(_ context.Context, userID string, ids []string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, id := range ids {
		if label, ok := r.labels[id]; ok && label.UserID == userID {
			count++
		}
	}
	return count, nil
}
