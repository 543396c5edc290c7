// README: Booking handlers for create/list/get/cancel by the signed-in owner.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"petlove/internal/http/middleware"
	"petlove/internal/modules/booking"
	"petlove/internal/types"
)

type BookingHandler struct {
	booking  *booking.Service
	resolver middleware.RoleResolver
}

func NewBookingHandler(svc *booking.Service, resolver middleware.RoleResolver) *BookingHandler {
	return &BookingHandler{booking: svc, resolver: resolver}
}

// Create handles POST /api/bookings. The body is the completed wizard draft.
func (h *BookingHandler) Create(c *gin.Context) {
	var draft booking.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := normalizeDraft(&draft); err != nil {
		writeQuoteError(c, err)
		return
	}
	b, err := h.booking.Create(c.Request.Context(), booking.CreateCommand{
		UserID: middleware.CallerUID(c),
		Draft:  draft,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, b)
}

func (h *BookingHandler) List(c *gin.Context) {
	list, err := h.booking.ListByUser(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": list})
}

// Stats handles GET /api/bookings/stats: the caller's bookings counted per status.
func (h *BookingHandler) Stats(c *gin.Context) {
	stats, err := h.booking.Stats(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, stats)
}

// Get handles GET /api/bookings/:id. Admins may read any booking.
func (h *BookingHandler) Get(c *gin.Context) {
	admin := middleware.CallerDecision(c, h.resolver).IsAdmin()
	b, err := h.booking.GetForUser(c.Request.Context(), types.ID(c.Param("id")), middleware.CallerUID(c), admin)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	b, err := h.booking.Cancel(c.Request.Context(), booking.CancelCommand{
		BookingID: types.ID(c.Param("id")),
		UserID:    middleware.CallerUID(c),
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}
