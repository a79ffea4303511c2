package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yoockh/scribely/internal/models"
	"github.com/yoockh/scribely/internal/utils"
)

// writeError renders err as {"error": msg}. Only the AppError's safe message
// reaches the client; the full chain is attached to the context for the
// request logger.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(utils.HTTPStatus(err), models.ErrorResponse{Error: utils.SafeMessage(err)})
}
