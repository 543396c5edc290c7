// README: Quick quotation, capacity lookup and wizard step validation. Public endpoints.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"petlove/internal/modules/booking"
	"petlove/internal/modules/pricing"
	"petlove/internal/types"
)

type QuoteHandler struct {
	pricing *pricing.Service
	booking *booking.Service
}

func NewQuoteHandler(pricingSvc *pricing.Service, bookingSvc *booking.Service) *QuoteHandler {
	return &QuoteHandler{pricing: pricingSvc, booking: bookingSvc}
}

type quoteReq struct {
	DistanceKm  float64      `json:"distance_km"`
	Pickup      *types.Point `json:"pickup"`
	Dropoff     *types.Point `json:"dropoff"`
	VehicleType string       `json:"vehicle_type"`
	PetSize     string       `json:"pet_size"`
	PetCount    int          `json:"pet_count"`
}

// Quote handles POST /api/quotes. A known distance is priced directly;
// otherwise the driving distance between pickup and dropoff is looked up.
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	vehicle, err := pricing.ParseVehicleType(req.VehicleType)
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	size, err := pricing.ParsePetSize(req.PetSize)
	if err != nil {
		writeQuoteError(c, err)
		return
	}

	if req.DistanceKm == 0 && req.Pickup != nil && req.Dropoff != nil {
		q, err := h.booking.Estimate(c.Request.Context(), booking.Draft{
			Pickup:      req.Pickup,
			Dropoff:     req.Dropoff,
			VehicleType: vehicle,
			PetSize:     size,
			PetCount:    req.PetCount,
		})
		if err != nil {
			writeQuoteError(c, err)
			return
		}
		writeJSON(c, http.StatusOK, q)
		return
	}

	q, err := h.pricing.Quote(pricing.QuoteRequest{
		DistanceKm:  req.DistanceKm,
		VehicleType: vehicle,
		PetSize:     size,
		PetCount:    req.PetCount,
	})
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

// Capacity handles GET /api/capacity?vehicle_type=&pet_size=&pet_count=.
func (h *QuoteHandler) Capacity(c *gin.Context) {
	vehicle, err := pricing.ParseVehicleType(c.Query("vehicle_type"))
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	size, err := pricing.ParsePetSize(c.Query("pet_size"))
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	count := 0
	if v := c.Query("pet_count"); v != "" {
		if count, err = strconv.Atoi(v); err != nil {
			writeError(c, http.StatusBadRequest, "invalid pet_count")
			return
		}
	}
	capacity, err := h.pricing.Capacity(size, vehicle, count)
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, capacity)
}

type validateStepReq struct {
	Step  int           `json:"step"`
	Draft booking.Draft `json:"draft"`
}

type validateStepResp struct {
	Step     int    `json:"step"`
	Valid    bool   `json:"valid"`
	NextStep int    `json:"next_step"`
	Error    string `json:"error,omitempty"`
}

// ValidateStep handles POST /api/bookings/validate-step.
func (h *QuoteHandler) ValidateStep(c *gin.Context) {
	var req validateStepReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := normalizeDraft(&req.Draft); err != nil {
		writeQuoteError(c, err)
		return
	}
	w := booking.ResumeWizard(req.Step)
	resp := validateStepResp{Step: w.Step()}
	if err := w.Next(req.Draft); err != nil {
		resp.Error = err.Error()
	} else {
		resp.Valid = true
	}
	resp.NextStep = w.Step()
	writeJSON(c, http.StatusOK, resp)
}

// normalizeDraft accepts any letter case for the vehicle and pet size.
// Empty values are left for step validation to report.
func normalizeDraft(d *booking.Draft) error {
	if v := strings.TrimSpace(string(d.VehicleType)); v != "" {
		vehicle, err := pricing.ParseVehicleType(v)
		if err != nil {
			return err
		}
		d.VehicleType = vehicle
	}
	if v := strings.TrimSpace(string(d.PetSize)); v != "" {
		size, err := pricing.ParsePetSize(v)
		if err != nil {
			return err
		}
		d.PetSize = size
	}
	return nil
}
