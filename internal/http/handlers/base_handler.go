// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"petlove/internal/modules/booking"
	"petlove/internal/modules/chat"
	"petlove/internal/modules/event"
	"petlove/internal/modules/location"
	"petlove/internal/modules/pricing"
	"petlove/internal/modules/profile"
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

// writeQuoteError maps pricing and wizard validation failures to 400.
func writeQuoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrValidation),
		errors.Is(err, pricing.ErrConfiguration),
		errors.Is(err, booking.ErrIncomplete):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrDistanceUnavailable):
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, booking.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeQuoteError(c, err)
	}
}

func writeProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, profile.ErrInvalidRole), errors.Is(err, profile.ErrInvalidUser), errors.Is(err, profile.ErrInvalidName):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrInsufficientTokens):
		writeError(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMessageTooLong):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, event.ErrInvalid):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, event.ErrAlreadyRegistered):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, event.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeLocationError(c *gin.Context, err error) {
	if errors.Is(err, location.ErrInvalidRole) {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	writeError(c, http.StatusInternalServerError, "internal error")
}
