package storage

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewPostgresRepository(zerolog.Nop(), mock), mock
}

func TestMigrationsApplyInOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	if err := MigrateUp(context.Background(), mock); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS tasks")).
		WillReturnResult(pgxmock.NewResult("DROP", 0))
	if err := MigrateDown(context.Background(), mock); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrationErrorNamesFile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE")).
		WillReturnError(errors.New("permission denied"))
	err = MigrateDown(context.Background(), mock)
	if err == nil || !strings.Contains(err.Error(), "0001_init.down.sql") {
		t.Fatalf("expected error naming the migration, got %v", err)
	}
}

func TestPostgresDeleteLabelDetachesInOneTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM labels")).
		WithArgs("l1", "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("SET label_ids = array_remove(label_ids, $1)")).
		WithArgs("l1", "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	if err := repo.DeleteLabel(context.Background(), "u1", "l1"); err != nil {
		t.Fatalf("delete label: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresDeleteLabelNotFoundRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM labels")).
		WithArgs("l1", "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := repo.DeleteLabel(context.Background(), "u1", "l1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err = mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCreateUserMapsUniqueViolations(t *testing.T) {
	cases := map[string]error{
		"users_email_key":    ErrEmailTaken,
		"users_username_key": ErrUsernameTaken,
	}
	for constraint, want := range cases {
		t.Run(constraint, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
				WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraint})

			err := repo.CreateUser(context.Background(), models.User{ID: "u1", Email: "a@b.c", Username: "alice"})
			if !errors.Is(err, want) {
				t.Fatalf("expected %v, got %v", want, err)
			}
		})
	}
}

func TestPostgresGetTaskNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks")).
		WithArgs("t1", "u1").
		WillReturnRows(mock.NewRows([]string{"id"}))

	_, err := repo.GetTask(context.Background(), "u1", "t1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresListTasksScansRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	description := "2 liters"

	columns := []string{"id", "user_id", "title", "description", "priority", "deadline", "completed", "label_ids", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks")).
		WithArgs("u1").
		WillReturnRows(mock.NewRows(columns).
			AddRow("t1", "u1", "Buy milk", &description, "Medium", now, false, []string{"l1"}, now, now))

	tasks, err := repo.ListTasks(context.Background(), "u1", TaskFilter{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.Title != "Buy milk" || task.Priority != models.PriorityMedium || !slices.Equal(task.LabelIDs, []string{"l1"}) {
		t.Fatalf("unexpected task: %+v", task)
	}
	if err = mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBuildListTasksQuery(t *testing.T) {
	completed, overdue := false, true
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

	query, args := buildListTasksQuery("u1", TaskFilter{
		Priority:  models.PriorityHigh,
		Completed: &completed,
		LabelIDs:  []string{"l1", "l2"},
		Overdue:   &overdue,
		Now:       now,
		SortBy:    SortByPriority,
		Order:     OrderAsc,
	})

	for _, want := range []string{
		"WHERE user_id = $1",
		"AND priority = $2",
		"AND completed = $3",
		"AND label_ids && $4",
		"AND NOT completed AND deadline < $5",
		"ORDER BY CASE priority WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 ELSE 1 END ASC",
	} {
		if !strings.Contains(query, want) {
			t.Fatalf("query missing %q:\n%s", want, query)
		}
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}

	query, args = buildListTasksQuery("u1", TaskFilter{SortBy: "title; DROP TABLE tasks"})
	if !strings.Contains(query, "ORDER BY created_at DESC") || len(args) != 1 {
		t.Fatalf("unexpected fallback query:\n%s", query)
	}
}

func TestMigrateUpAppliesEmbeddedFiles(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	if err = MigrateUp(context.Background(), mock); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if err = mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
