package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-tasks/internal/models"
)

const selectTaskColumns = `
SELECT id,
       user_id,
       title,
       description,
       priority,
       deadline,
       completed,
       label_ids,
       created_at,
       updated_at
FROM tasks
`

func (r *PostgresRepository) CreateTask(ctx context.Context, task models.Task) error {
	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   title,
                   description,
                   priority,
                   deadline,
                   completed,
                   label_ids,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err := r.db.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		string(task.Priority),
		task.Deadline,
		task.Completed,
		nonNilIDs(task.LabelIDs),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return err
	}
	r.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (r *PostgresRepository) GetTask(ctx context.Context, userID, id string) (models.Task, error) {
	task, err := scanTask(r.db.QueryRow(
		ctx,
		selectTaskColumns+"WHERE id = $1 AND user_id = $2",
		id,
		userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task")
		return models.Task{}, err
	}
	r.logger.Debug().
		Str("task_id", task.ID).
		Msg("selected task")
	return task, nil
}

func (r *PostgresRepository) UpdateTask(ctx context.Context, task models.Task) error {
	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    priority = $3,
    deadline = $4,
    completed = $5,
    label_ids = $6,
    updated_at = $7
WHERE id = $8 AND user_id = $9
`
	tag, err := r.db.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		string(task.Priority),
		task.Deadline,
		task.Completed,
		nonNilIDs(task.LabelIDs),
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated task")
	return nil
}

func (r *PostgresRepository) DeleteTask(ctx context.Context, userID, id string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := r.db.Exec(
		ctx,
		deleteTaskQuery,
		id,
		userID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (r *PostgresRepository) ListTasks(ctx context.Context, userID string, filter TaskFilter) ([]models.Task, error) {
	query, args := buildListTasksQuery(userID, filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			r.logger.Error().
				Err(scanErr).
				Msg("failed to scan task")
			return nil, scanErr
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	r.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("selected tasks")
	return tasks, nil
}

var taskSortExpressions = map[string]string{
	SortByCreatedAt: "created_at",
	SortByDeadline:  "deadline",
	SortByPriority:  "CASE priority WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 ELSE 1 END",
}

func buildListTasksQuery(userID string, filter TaskFilter) (string, []any) {
	args := []any{userID}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	var b strings.Builder
	b.WriteString(selectTaskColumns)
	b.WriteString("WHERE user_id = $1")

	if filter.Priority != "" {
		fmt.Fprintf(&b, " AND priority = %s", arg(string(filter.Priority)))
	}
	if filter.Completed != nil {
		fmt.Fprintf(&b, " AND completed = %s", arg(*filter.Completed))
	}
	if len(filter.LabelIDs) > 0 {
		fmt.Fprintf(&b, " AND label_ids && %s", arg(filter.LabelIDs))
	}
	if filter.Overdue != nil {
		now := arg(filter.Now)
		if *filter.Overdue {
			fmt.Fprintf(&b, " AND NOT completed AND deadline < %s", now)
		} else {
			fmt.Fprintf(&b, " AND (completed OR deadline >= %s)", now)
		}
	}

	sortExpr, ok := taskSortExpressions[filter.SortBy]
	if !ok {
		sortExpr = taskSortExpressions[SortByCreatedAt]
	}
	direction := "DESC"
	if filter.Order == OrderAsc {
		direction = "ASC"
	}
	fmt.Fprintf(&b, "\nORDER BY %s %s, created_at ASC, id ASC", sortExpr, direction)

	return b.String(), args
}

func scanTask(row pgx.Row) (models.Task, error) {
	var (
		task     models.Task
		priority string
	)
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&priority,
		&task.Deadline,
		&task.Completed,
		&task.LabelIDs,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, err
	}
	task.Priority = models.Priority(priority)
	return task, nil
}

func (r *PostgresRepository) CreateLabel(ctx context.Context, label models.Label) error {
	const insertLabelQuery = `
INSERT INTO labels (id,
                    user_id,
                    name,
                    color,
                    created_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.db.Exec(
		ctx,
		insertLabelQuery,
		label.ID,
		label.UserID,
		label.Name,
		label.Color,
		label.CreatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		r.logger.Error().
			Err(err).
			Msg("failed to insert label")
		return err
	}
	r.logger.Debug().
		Str("label_id", label.ID).
		Msg("inserted label")
	return nil
}

const selectLabelColumns = `
SELECT id,
       user_id,
       name,
       color,
       created_at
FROM labels
`

func (r *PostgresRepository) GetLabel(ctx context.Context, userID, id string) (models.Label, error) {
	var label models.Label
	err := r.db.QueryRow(
		ctx,
		selectLabelColumns+"WHERE id = $1 AND user_id = $2",
		id,
		userID,
	).Scan(
		&label.ID,
		&label.UserID,
		&label.Name,
		&label.Color,
		&label.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Label{}, ErrNotFound
		}
		r.logger.Error().
			Err(err).
			Str("label_id", id).
			Msg("failed to select label")
		return models.Label{}, err
	}
	r.logger.Debug().
		Str("label_id", label.ID).
		Msg("selected label")
	return label, nil
}

func (r *PostgresRepository) UpdateLabel(ctx context.Context, label models.Label) error {
	const updateLabelQuery = `
UPDATE labels
SET name = $1,
    color = $2
WHERE id = $3 AND user_id = $4
`
	tag, err := r.db.Exec(
		ctx,
		updateLabelQuery,
		label.Name,
		label.Color,
		label.ID,
		label.UserID,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		r.logger.Error().
			Err(err).
			Str("label_id", label.ID).
			Msg("failed to update label")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Debug().
		Str("label_id", label.ID).
		Msg("updated label")
	return nil
}

func (r *PostgresRepository) DeleteLabel(ctx context.Context, userID, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const deleteLabelQuery = `
DELETE FROM labels
WHERE id = $1 AND user_id = $2
`
	tag, err := tx.Exec(
		ctx,
		deleteLabelQuery,
		id,
		userID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("label_id", id).
			Msg("failed to delete label")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Debug().
		Str("label_id", id).
		Msg("deleted label")

	const detachLabelQuery = `
UPDATE tasks
SET label_ids = array_remove(label_ids, $1),
    updated_at = now()
WHERE user_id = $2 AND
      $1 = ANY (label_ids)
`
	tag, err = tx.Exec(
		ctx,
		detachLabelQuery,
		id,
		userID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("label_id", id).
			Msg("failed to detach label from tasks")
		return err
	}
	r.logger.Debug().
		Str("label_id", id).
		Int64("affected", tag.RowsAffected()).
		Msg("detached label from tasks")

	err = tx.Commit(ctx)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}
	return nil
}

func (r *PostgresRepository) ListLabels(ctx context.Context, userID string) ([]models.Label, error) {
	rows, err := r.db.Query(
		ctx,
		selectLabelColumns+"WHERE user_id = $1\nORDER BY name ASC",
		userID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to select labels")
		return nil, err
	}
	defer rows.Close()

	labels := make([]models.Label, 0)
	for rows.Next() {
		var label models.Label
		err = rows.Scan(
			&label.ID,
			&label.UserID,
			&label.Name,
			&label.Color,
			&label.CreatedAt,
		)
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to scan label")
			return nil, err
		}
		labels = append(labels, label)
	}

	err = rows.Err()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	r.logger.Debug().
		Int("count", len(labels)).
		Str("user_id", userID).
		Msg("selected labels")
	return labels, nil
}

func (r *PostgresRepository) CountLabels(ctx context.Context, userID string, ids []string) (int, error) {
	const countLabelsQuery = `
SELECT count(*)
FROM labels
WHERE user_id = $1 AND
      id = ANY ($2)
`
	var count int
	err := r.db.QueryRow(
		ctx,
		countLabelsQuery,
		userID,
		ids,
	).Scan(&count)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to count labels")
		return 0, err
	}
	return count, nil
}

func nonNilIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
