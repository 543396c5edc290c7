// README: Event registration. Public sign-up, admin listing and voucher lookup.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"petlove/internal/modules/event"
)

type EventHandler struct {
	event *event.Service
}

func NewEventHandler(svc *event.Service) *EventHandler {
	return &EventHandler{event: svc}
}

// Register handles POST /api/events/registrations.
func (h *EventHandler) Register(c *gin.Context) {
	var req event.RegisterCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	r, err := h.event.Register(c.Request.Context(), req)
	if err != nil {
		writeEventError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *EventHandler) List(c *gin.Context) {
	list, err := h.event.List(c.Request.Context())
	if err != nil {
		writeEventError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"registrations": list})
}

// Voucher handles GET /api/admin/events/vouchers/:code.
func (h *EventHandler) Voucher(c *gin.Context) {
	r, err := h.event.FindByVoucher(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeEventError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}
