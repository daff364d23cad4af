package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	repo   storage.Repository
}

func NewTaskService(
	logger zerolog.Logger,
	repo storage.Repository,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, userID string, params ListTasksParams) ([]models.Task, error) {
	now := time.Now()
	tasks, err := s.repo.ListTasks(ctx, userID, storage.TaskFilter{
		Priority:  params.Priority,
		Completed: params.Completed,
		LabelIDs:  params.LabelIDs,
		Overdue:   params.Overdue,
		Now:       now,
		SortBy:    params.SortBy,
		Order:     params.Order,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to list tasks")
		return nil, err
	}

	for i := range tasks {
		tasks[i].IsOverdue = tasks[i].OverdueAt(now)
	}

	s.logger.Info().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("listed tasks")
	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("task_id", taskID).
				Str("user_id", userID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}
	task.IsOverdue = task.OverdueAt(time.Now())
	return &task, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, userID string, data models.TaskCreate) (*models.Task, error) {
	labelIDs, err := s.checkLabels(ctx, userID, data.LabelIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task := models.Task{
		UserID:      userID,
		Title:       data.Title,
		Description: data.Description,
		Priority:    data.Priority,
		Deadline:    data.Deadline,
		LabelIDs:    labelIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	err = s.repo.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to create task")
		return nil, err
	}
	task.IsOverdue = task.OverdueAt(now)

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", userID).
		Msg("created task")
	return &task, nil
}

func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID string,
	data models.TaskUpdate,
) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if data.LabelIDs != nil {
		labelIDs, checkErr := s.checkLabels(ctx, userID, *data.LabelIDs)
		if checkErr != nil {
			return nil, checkErr
		}
		data.LabelIDs = &labelIDs
	}

	data.Apply(task)
	task.UpdatedAt = time.Now()

	return s.saveTask(ctx, task, "updated task")
}

func (s *taskServiceImpl) ToggleTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	task.UpdatedAt = time.Now()

	return s.saveTask(ctx, task, "toggled task completion")
}

func (s *taskServiceImpl) saveTask(ctx context.Context, task *models.Task, msg string) (*models.Task, error) {
	err := s.repo.UpdateTask(ctx, *task)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}
	task.IsOverdue = task.OverdueAt(task.UpdatedAt)

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Bool("completed", task.Completed).
		Msg(msg)
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID string) error {
	err := s.repo.DeleteTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("task_id", taskID).
				Str("user_id", userID).
				Msg("task not found")
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg("deleted task")
	return nil
}

// checkLabels deduplicates ids, keeping their order, and verifies that
// every one of them is a label owned by userID.
func (s *taskServiceImpl) checkLabels(ctx context.Context, userID string, ids []string) ([]string, error) {
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return unique, nil
	}

	count, err := s.repo.CountLabels(ctx, userID, unique)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to count labels")
		return nil, err
	}
	if count != len(unique) {
		s.logger.Error().
			Strs("label_ids", unique).
			Int("owned", count).
			Msg("task references unknown labels")
		return nil, ErrInvalidLabelIDs
	}
	return unique, nil
}
