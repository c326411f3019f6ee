// internal/handlers/handlers.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/nickopusan/caufi-backend/internal/services"
	"github.com/nickopusan/caufi-backend/internal/utils"
)

// respondBindingError turns a JSON binding failure into the response
// envelope, with per-field detail when the failure came from validation tags.
func respondBindingError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}
	utils.BadRequestResponse(c, "BAD_REQUEST", "Invalid input", err.Error())
}

// respondServiceError maps the service failure taxonomy onto HTTP statuses.
// The wrapped message carries the correctable detail (e.g. "only 3 in
// stock"), so it is surfaced as-is.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrValidation):
		utils.BadRequestResponse(c, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, services.ErrStockExceeded):
		utils.BadRequestResponse(c, "STOCK_EXCEEDED", err.Error(), nil)
	case errors.Is(err, services.ErrInsufficientStock):
		utils.BadRequestResponse(c, "INSUFFICIENT_STOCK", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidAddress):
		utils.BadRequestResponse(c, "INVALID_ADDRESS", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidItem):
		utils.BadRequestResponse(c, "INVALID_ITEM", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidState):
		utils.BadRequestResponse(c, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrPaymentGateway):
		utils.BadGatewayResponse(c, "PAYMENT_GATEWAY_ERROR", err.Error())
	default:
		utils.InternalErrorResponse(c, "")
	}
}
