package storage

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/adanyl0v/go-tasks/internal/models"
)

func seedUser(t *testing.T, repo *MemoryRepository, id, email, username string) {
	t.Helper()
	err := repo.CreateUser(context.Background(), models.User{ID: id, Email: email, Username: username})
	if err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}

func TestMemoryUserUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	seedUser(t, repo, "u1", "alice@example.com", "alice")

	err := repo.CreateUser(ctx, models.User{ID: "u2", Email: "alice@example.com", Username: "other"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	err = repo.CreateUser(ctx, models.User{ID: "u2", Email: "bob@example.com", Username: "alice"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	user, err := repo.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || user.ID != "u1" {
		t.Fatalf("get by email: %v %+v", err, user)
	}
	user.Username = "alice2"
	if err = repo.UpdateUser(ctx, user); err != nil {
		t.Fatalf("update own user: %v", err)
	}
}

func TestMemorySessionRotationAndRevocation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	seedUser(t, repo, "u1", "alice@example.com", "alice")

	now := time.Now()
	err := repo.CreateSession(ctx, models.Session{ID: "s1", UserID: "u1", RefreshToken: "r1", ExpiresAt: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	next := models.Session{RefreshToken: "r2", ExpiresAt: now.Add(2 * time.Hour), UpdatedAt: now}
	if err = repo.RotateSession(ctx, "s1", "r1", next); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if err = repo.RotateSession(ctx, "s1", "r1", next); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rotating a replaced token must fail, got %v", err)
	}

	if err = repo.RevokeSession(ctx, "u1", "r2"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	session, err := repo.GetSessionByID(ctx, "s1")
	if err != nil || !session.Revoked {
		t.Fatalf("expected revoked session, got %+v %v", session, err)
	}
	if err = repo.RevokeSession(ctx, "u1", "r2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double revoke must fail, got %v", err)
	}
}

func TestMemoryDeleteLabelDetachesFromTasks(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	seedUser(t, repo, "u1", "alice@example.com", "alice")
	seedUser(t, repo, "u2", "bob@example.com", "bob")

	for _, label := range []models.Label{
		{ID: "l1", UserID: "u1", Name: "work"},
		{ID: "l2", UserID: "u1", Name: "home"},
	} {
		if err := repo.CreateLabel(ctx, label); err != nil {
			t.Fatalf("create label: %v", err)
		}
	}
	for _, task := range []models.Task{
		{ID: "t1", UserID: "u1", LabelIDs: []string{"l1", "l2"}},
		{ID: "t2", UserID: "u1", LabelIDs: []string{"l1"}},
		// Foreign rows never change, even if they happen to carry the id.
		{ID: "t3", UserID: "u2", LabelIDs: []string{"l1"}},
	} {
		if err := repo.CreateTask(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	if err := repo.DeleteLabel(ctx, "u2", "l1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete must fail, got %v", err)
	}
	if err := repo.DeleteLabel(ctx, "u1", "l1"); err != nil {
		t.Fatalf("delete label: %v", err)
	}

	t1, _ := repo.GetTask(ctx, "u1", "t1")
	t2, _ := repo.GetTask(ctx, "u1", "t2")
	t3, _ := repo.GetTask(ctx, "u2", "t3")
	if !slices.Equal(t1.LabelIDs, []string{"l2"}) || len(t2.LabelIDs) != 0 {
		t.Fatalf("label not detached: t1=%v t2=%v", t1.LabelIDs, t2.LabelIDs)
	}
	if !slices.Equal(t3.LabelIDs, []string{"l1"}) {
		t.Fatalf("foreign task modified: %v", t3.LabelIDs)
	}

	labels, _ := repo.ListLabels(ctx, "u1")
	if len(labels) != 1 || labels[0].ID != "l2" {
		t.Fatalf("unexpected labels: %+v", labels)
	}
}

func TestMemoryLabelNameUniquePerUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	if err := repo.CreateLabel(ctx, models.Label{ID: "l1", UserID: "u1", Name: "work"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.CreateLabel(ctx, models.Label{ID: "l2", UserID: "u1", Name: "work"}); !errors.Is(err, ErrLabelNameTaken) {
		t.Fatalf("expected ErrLabelNameTaken, got %v", err)
	}
	if err := repo.CreateLabel(ctx, models.Label{ID: "l3", UserID: "u2", Name: "work"}); err != nil {
		t.Fatalf("other user may reuse the name: %v", err)
	}

	n, _ := repo.CountLabels(ctx, "u1", []string{"l1", "l3", "missing"})
	if n != 1 {
		t.Fatalf("expected 1 owned label, got %d", n)
	}
}

func TestMemoryListTasksFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

	for i, task := range []models.Task{
		{ID: "t1", UserID: "u1", Priority: models.PriorityLow, Deadline: now.Add(-time.Hour)},
		{ID: "t2", UserID: "u1", Priority: models.PriorityHigh, Deadline: now.Add(time.Hour), Completed: true},
		{ID: "t3", UserID: "u1", Priority: models.PriorityMedium, Deadline: now.Add(2 * time.Hour)},
		{ID: "t4", UserID: "u2", Priority: models.PriorityHigh, Deadline: now},
	} {
		task.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		if err := repo.CreateTask(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	overdue := true
	tasks, _ := repo.ListTasks(ctx, "u1", TaskFilter{Overdue: &overdue, Now: now})
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Fatalf("unexpected overdue tasks: %+v", tasks)
	}

	tasks, _ = repo.ListTasks(ctx, "u1", TaskFilter{SortBy: SortByPriority, Order: OrderDesc, Now: now})
	var ids []string
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	if !slices.Equal(ids, []string{"t2", "t3", "t1"}) {
		t.Fatalf("unexpected priority order: %v", ids)
	}

	tasks, _ = repo.ListTasks(ctx, "u1", TaskFilter{SortBy: "bogus", Now: now})
	if len(tasks) != 3 || tasks[0].ID != "t3" {
		t.Fatalf("unknown sort key must fall back to created_at desc: %+v", tasks)
	}
}
