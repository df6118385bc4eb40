// README: Base handler utilities (JSON helpers, domain error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"feastly/internal/modules/account"
	"feastly/internal/modules/commission"
	"feastly/internal/modules/delivery"
	"feastly/internal/modules/earnings"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps module sentinels onto HTTP codes in one place, so
// every handler surfaces the same contract: 400 validation, 404 unknown id,
// 409 illegal transition or lost race, 500 everything else.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account.ErrValidation),
		errors.Is(err, commission.ErrValidation),
		errors.Is(err, earnings.ErrValidation),
		errors.Is(err, delivery.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, commission.ErrNotFound),
		errors.Is(err, earnings.ErrNotFound),
		errors.Is(err, delivery.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrInvalidTransition),
		errors.Is(err, account.ErrConflict),
		errors.Is(err, commission.ErrConflict),
		errors.Is(err, delivery.ErrInvalidTransition),
		errors.Is(err, delivery.ErrConflict),
		errors.Is(err, delivery.ErrNotSettleable):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
