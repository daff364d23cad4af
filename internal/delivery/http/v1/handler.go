package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleGetMe(c *gin.Context)
	HandleUpdateMe(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleToggleTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleGetLabels(c *gin.Context)
	HandleGetLabel(c *gin.Context)
	HandleCreateLabel(c *gin.Context)
	HandleUpdateLabel(c *gin.Context)
	HandleDeleteLabel(c *gin.Context)

	HandleHealth(c *gin.Context)
}

type handlerImpl struct {
	logger   zerolog.Logger
	auth     services.AuthService
	users    services.UserService
	sessions services.SessionService
	tasks    services.TaskService
	labels   services.LabelService
	health   services.HealthService
}

func New(logger zerolog.Logger, svc *services.Services) Handler {
	return &handlerImpl{
		logger:   logger,
		auth:     svc.Auth,
		users:    svc.Users,
		sessions: svc.Sessions,
		tasks:    svc.Tasks,
		labels:   svc.Labels,
		health:   svc.Health,
	}
}
