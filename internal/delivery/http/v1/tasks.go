package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/services"
)

type listTasksQuery struct {
	Priority  string `form:"priority" binding:"omitempty,priority"`
	Completed *bool  `form:"completed"`
	// Labels is a comma-separated list of label ids.
	Labels  string `form:"labels"`
	Overdue *bool  `form:"overdue"`
	SortBy  string `form:"sort_by" binding:"omitempty,oneof=created_at deadline priority"`
	Order   string `form:"order" binding:"omitempty,oneof=asc desc"`
}

func (q listTasksQuery) params() services.ListTasksParams {
	params := services.ListTasksParams{
		Priority:  models.Priority(q.Priority),
		Completed: q.Completed,
		Overdue:   q.Overdue,
		SortBy:    q.SortBy,
		Order:     q.Order,
	}
	for _, id := range strings.Split(q.Labels, ",") {
		if id = strings.TrimSpace(id); id != "" {
			params.LabelIDs = append(params.LabelIDs, id)
		}
	}
	return params
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	var query listTasksQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBindError(err))
		return
	}

	tasks, err := h.tasks.ListTasks(c, userID, query.params())
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c, userID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

type createTaskRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=200"`
	Description *string   `json:"description" binding:"omitempty,max=1000"`
	Priority    string    `json:"priority" binding:"required,priority"`
	Deadline    time.Time `json:"deadline" binding:"required"`
	LabelIDs    []string  `json:"label_ids"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	task, err := h.tasks.CreateTask(c, userID, models.TaskCreate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.Priority(req.Priority),
		Deadline:    req.Deadline,
		LabelIDs:    req.LabelIDs,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusCreated, task)
}

type updateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=1000"`
	Priority    *string    `json:"priority" binding:"omitempty,priority"`
	Deadline    *time.Time `json:"deadline"`
	Completed   *bool      `json:"completed"`
	LabelIDs    *[]string  `json:"label_ids"`
}

func (r updateTaskRequest) update() models.TaskUpdate {
	update := models.TaskUpdate{
		Title:       r.Title,
		Description: r.Description,
		Deadline:    r.Deadline,
		Completed:   r.Completed,
		LabelIDs:    r.LabelIDs,
	}
	if r.Priority != nil {
		priority := models.Priority(*r.Priority)
		update.Priority = &priority
	}
	return update
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	task, err := h.tasks.UpdateTask(c, userID, c.Param("id"), req.update())
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleToggleTask(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	task, err := h.tasks.ToggleTask(c, userID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to toggle task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteTask(c, userID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete task")
		abort(c, newServiceError(err))
		return
	}

	c.Status(http.StatusNoContent)
}
