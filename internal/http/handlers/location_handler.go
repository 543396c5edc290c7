// README: Map pin handler. Reverse geocodes a picked point and logs it for the chat session.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"petlove/internal/modules/location"
	"petlove/internal/types"
)

type LocationHandler struct {
	location *location.Service
}

func NewLocationHandler(svc *location.Service) *LocationHandler {
	return &LocationHandler{location: svc}
}

type pickReq struct {
	SessionID string  `json:"session_id"`
	Role      string  `json:"role"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

type pickResp struct {
	*location.Pick
	Saved bool `json:"saved"`
}

// Pick handles POST /api/locations/pick. The address is returned even when
// the pick could not be logged.
func (h *LocationHandler) Pick(c *gin.Context) {
	var req pickReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		writeError(c, http.StatusBadRequest, "invalid coordinates")
		return
	}
	p, err := h.location.Pick(c.Request.Context(), location.PickCommand{
		SessionID: strings.TrimSpace(req.SessionID),
		Role:      location.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		Position:  types.Point{Lat: req.Lat, Lng: req.Lng},
	})
	if p == nil {
		writeLocationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, pickResp{Pick: p, Saved: err == nil})
}

// History handles GET /api/locations/sessions/:id.
func (h *LocationHandler) History(c *gin.Context) {
	picks, err := h.location.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLocationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"picks": picks})
}
