package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/planlane/project_delivery_app/internal/apperrors"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondWithError maps service errors onto HTTP responses. AppError codes
// win; otherwise the sentinel decides the status.
func respondWithError(c *gin.Context, logger *slog.Logger, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error("Request failed", slog.String("error", err.Error()))
		} else {
			logger.Warn("Request rejected", slog.String("error", err.Error()))
		}
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrRefreshTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrStaleVersion),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrAlreadyBaselined),
		errors.Is(err, apperrors.ErrBaselineLocked),
		errors.Is(err, apperrors.ErrVariationNotApproved):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrPartialApply):
		// A rolled-back apply is a system fault to retry, not a bad request.
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: "Internal server error"})
		return
	}
	logger.Warn("Request rejected", slog.String("error", err.Error()))
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
