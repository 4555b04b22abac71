package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/eventbooking/internal/domain"
	"github.com/seatsurge/eventbooking/internal/dto"
)

// handleError maps domain errors onto HTTP responses. Unmapped errors
// surface as 500 with no internal detail.
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "ALREADY_BOOKED",
		})
	case domain.IsInvalidState(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_STATE",
		})
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
	case domain.IsTransient(err):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "RETRY_LATER",
			Message: "The seat ledger is contended, retry shortly",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL",
		})
	}
}
