package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tasks/internal/models"
)

func (h *handlerImpl) HandleGetLabels(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	labels, err := h.labels.ListLabels(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list labels")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, labels)
}

func (h *handlerImpl) HandleGetLabel(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	label, err := h.labels.GetLabel(c, userID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get label")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, label)
}

type createLabelRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=50"`
	Color string `json:"color" binding:"required,hexcolor6"`
}

func (h *handlerImpl) HandleCreateLabel(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	var req createLabelRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	label, err := h.labels.CreateLabel(c, userID, models.LabelCreate{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create label")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusCreated, label)
}

type updateLabelRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=50"`
	Color *string `json:"color" binding:"omitempty,hexcolor6"`
}

func (h *handlerImpl) HandleUpdateLabel(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	var req updateLabelRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	label, err := h.labels.UpdateLabel(c, userID, c.Param("id"), models.LabelUpdate{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update label")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, label)
}

func (h *handlerImpl) HandleDeleteLabel(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	err := h.labels.DeleteLabel(c, userID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete label")
		abort(c, newServiceError(err))
		return
	}

	c.Status(http.StatusNoContent)
}
