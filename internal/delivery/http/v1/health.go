package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status   string `json:"status"`
	API      string `json:"api"`
	Database string `json:"database"`
}

// HandleHealth always answers 200 and reports the storage state in the body.
func (h *handlerImpl) HandleHealth(c *gin.Context) {
	resp := healthResponse{
		Status:   "healthy",
		API:      "online",
		Database: "connected",
	}

	err := h.health.Ping(c)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("storage is unreachable")
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
	}

	c.JSON(http.StatusOK, resp)
}
