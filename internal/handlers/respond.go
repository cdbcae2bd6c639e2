package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postbase/postbase/internal/apperrors"
	"github.com/postbase/postbase/internal/logger"
	"github.com/postbase/postbase/internal/query"
	"github.com/postbase/postbase/internal/services"
)

// respondError maps service and validation errors to HTTP responses. Query
// validation failures carry every violation so the client can fix them all in
// one round trip.
func respondError(c *gin.Context, err error) {
	var validationErr *query.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      validationErr.Error(),
			"violations": validationErr.Violations,
		})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}

	if errors.Is(err, services.ErrPostNotFound) || errors.Is(err, services.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	logger.Error("request failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
