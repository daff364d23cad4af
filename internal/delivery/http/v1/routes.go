package v1

import "github.com/gin-gonic/gin"

func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/health", h.HandleHealth)

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.HandleRegister)
	auth.POST("/login", h.HandleLogin)
	auth.POST("/refresh", h.HandleRefresh)

	authorized := auth.Group("", h.HandleAuthMiddleware)
	authorized.POST("/logout", h.HandleLogout)
	authorized.GET("/me", h.HandleGetMe)
	authorized.PUT("/me", h.HandleUpdateMe)

	tasks := api.Group("/tasks", h.HandleAuthMiddleware)
	tasks.GET("", h.HandleGetTasks)
	tasks.POST("", h.HandleCreateTask)
	tasks.GET("/:id", h.HandleGetTask)
	tasks.PUT("/:id", h.HandleUpdateTask)
	tasks.PATCH("/:id/complete", h.HandleToggleTask)
	tasks.DELETE("/:id", h.HandleDeleteTask)

	labels := api.Group("/labels", h.HandleAuthMiddleware)
	labels.GET("", h.HandleGetLabels)
	labels.POST("", h.HandleCreateLabel)
	labels.GET("/:id", h.HandleGetLabel)
	labels.PUT("/:id", h.HandleUpdateLabel)
	labels.DELETE("/:id", h.HandleDeleteLabel)
}
