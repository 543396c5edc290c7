// README: Admin handlers. Booking status flow for admins, user role management for super admins.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"petlove/internal/http/middleware"
	"petlove/internal/modules/access"
	"petlove/internal/modules/booking"
	"petlove/internal/modules/profile"
	"petlove/internal/types"
)

type AdminHandler struct {
	booking  *booking.Service
	profile  *profile.Service
	resolver *access.Resolver
}

func NewAdminHandler(bookingSvc *booking.Service, profileSvc *profile.Service, resolver *access.Resolver) *AdminHandler {
	return &AdminHandler{booking: bookingSvc, profile: profileSvc, resolver: resolver}
}

// ListBookings handles GET /api/admin/bookings?status=.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	var status booking.Status
	if v := c.Query("status"); v != "" {
		parsed, ok := booking.ParseStatus(v)
		if !ok {
			writeError(c, http.StatusBadRequest, "invalid status")
			return
		}
		status = parsed
	}
	list, err := h.booking.ListAll(c.Request.Context(), status)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.booking.AllStats(c.Request.Context())
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, stats)
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	to, ok := booking.ParseStatus(req.Status)
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid status")
		return
	}
	b, err := h.booking.UpdateStatus(c.Request.Context(), booking.StatusCommand{
		BookingID: types.ID(c.Param("id")),
		To:        to,
		ActorID:   middleware.CallerUID(c),
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	list, err := h.profile.List(c.Request.Context())
	if err != nil {
		writeProfileError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"users": list})
}

type roleReq struct {
	Role string `json:"role"`
}

// UpdateRole handles PUT /api/admin/users/:id/role. The user's cached role is
// dropped; their next request resolves it with their own token claims.
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	var req roleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	userID := c.Param("id")
	p, err := h.profile.UpdateRole(c.Request.Context(), userID, strings.TrimSpace(req.Role))
	if err != nil {
		writeProfileError(c, err)
		return
	}
	h.resolver.Invalidate(userID)
	writeJSON(c, http.StatusOK, p)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == middleware.CallerUID(c) {
		writeError(c, http.StatusBadRequest, "cannot delete yourself")
		return
	}
	if err := h.profile.Delete(c.Request.Context(), userID); err != nil {
		writeProfileError(c, err)
		return
	}
	h.resolver.Invalidate(userID)
	c.Status(http.StatusNoContent)
}
