package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/safient/safient-escrow/internal/api/shared/errors"
	"github.com/safient/safient-escrow/internal/logger"
)

// respondWithError maps an executor error to the error envelope
func respondWithError(c *gin.Context, err error) {
	status, apiErr := apierrors.FromError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(c.Request.Context(), err,
			zap.String("path", c.Request.URL.Path),
		)
	}
	c.JSON(status, apiErr.Envelope())
}

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...).Envelope())
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, apierrors.NewValidationError(message).Envelope())
}
