// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/uniform-backend/internal/services"
	"github.com/javajoker/uniform-backend/internal/utils"
)

// handleServiceError maps service error kinds onto HTTP responses. Storage
// failures get a retriable 503; business rejections get their own codes so
// the client can tell a sold-out item from a quota breach.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, "Resource")
	case errors.Is(err, services.ErrVariantNotFound):
		utils.UnprocessableResponse(c, "VARIANT_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrInsufficientStock):
		utils.UnprocessableResponse(c, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, services.ErrQuantityExceeded):
		utils.UnprocessableResponse(c, "QUANTITY_EXCEEDED", err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		utils.ForbiddenResponse(c, err.Error())
	case services.IsRetriable(err):
		utils.ServiceUnavailableResponse(c, "")
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
