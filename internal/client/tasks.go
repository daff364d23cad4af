package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/adanyl0v/go-tasks/internal/models"
)

const tasksPath = "/api/tasks"

// TaskQuery narrows GET /api/tasks on the server side. Zero fields are
// omitted from the query string.
type TaskQuery struct {
	Priority  models.Priority
	Completed *bool
	LabelIDs  []string
	Overdue   *bool
	SortBy    string
	Order     string
}

func (q TaskQuery) Values() url.Values {
	v := url.Values{}
	if q.Priority != "" {
		v.Set("priority", string(q.Priority))
	}
	if q.Completed != nil {
		v.Set("completed", strconv.FormatBool(*q.Completed))
	}
	if len(q.LabelIDs) > 0 {
		v.Set("labels", strings.Join(q.LabelIDs, ","))
	}
	if q.Overdue != nil {
		v.Set("overdue", strconv.FormatBool(*q.Overdue))
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	return v
}

type TaskService struct {
	client *Client
}

func NewTaskService(client *Client) *TaskService {
	return &TaskService{client: client}
}

func (s *TaskService) List(ctx context.Context, query TaskQuery) ([]models.Task, error) {
	var tasks []models.Task
	err := s.client.Do(ctx, http.MethodGet, tasksPath, query.Values(), nil, &tasks)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := s.client.Do(ctx, http.MethodGet, taskPath(id), nil, nil, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Create(ctx context.Context, data models.TaskCreate) (*models.Task, error) {
	var task models.Task
	err := s.client.Do(ctx, http.MethodPost, tasksPath, nil, data, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Update(ctx context.Context, id string, data models.TaskUpdate) (*models.Task, error) {
	var task models.Task
	err := s.client.Do(ctx, http.MethodPut, taskPath(id), nil, data, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) ToggleComplete(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := s.client.Do(ctx, http.MethodPatch, taskPath(id)+"/complete", nil, nil, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
}

func taskPath(id string) string {
	return tasksPath + "/" + url.PathEscape(id)
}
