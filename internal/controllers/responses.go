package controllers

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

// exposeInternalErrors adds the underlying error to 500 responses; off in production
var exposeInternalErrors = true

// SetExposeInternalErrors toggles error details on 500 responses
func SetExposeInternalErrors(expose bool) {
	exposeInternalErrors = expose
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the APIError matching err and records err on the context for the request logger
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		c.JSON(statusFor(svcErr.Kind), models.NewAPIError(svcErr.Code, svcErr.Message, svcErr.Details))
		return
	}

	apiErr := models.NewAPIError(models.ErrInternalServer, "Internal server error")
	if exposeInternalErrors {
		apiErr.Details = map[string]interface{}{"error": err.Error()}
	}
	c.JSON(http.StatusInternalServerError, apiErr)
}

// respondBindError answers a request body that could not be decoded
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(
		models.ErrValidationFailed,
		"Invalid request body",
		map[string]interface{}{"error": err.Error()},
	))
}
