// README: Booking write handlers: request, assign, fare, payment, status, cancel.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"limo/internal/http/middleware"
	"limo/internal/modules/booking"
	"limo/internal/modules/pricing"
	"limo/internal/types"
)

type BookingHandler struct {
	dispatch *booking.Service
	pricing  *pricing.Service
	currency string
}

func NewBookingHandler(dispatch *booking.Service, pricingSvc *pricing.Service, currency string) *BookingHandler {
	if currency == "" {
		currency = "USD"
	}
	return &BookingHandler{dispatch: dispatch, pricing: pricingSvc, currency: currency}
}

type createBookingReq struct {
	ClientID        string    `json:"client_id"`
	Kind            string    `json:"kind"`
	Pickup          string    `json:"pickup"`
	PickupTime      time.Time `json:"pickup_time"`
	Stops           []string  `json:"stops"`
	Dropoff         string    `json:"dropoff"`
	DurationHours   int       `json:"duration_hours"`
	Passengers      int       `json:"passengers"`
	SpecialRequests string    `json:"special_requests"`
	AirportPickup   bool      `json:"airport_pickup"`
	FlightNumber    string    `json:"flight_number"`
	Airline         string    `json:"airline"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if !middleware.AuthDisabled(c) && middleware.CallerRole(c) != middleware.RoleOwner && middleware.CallerUID(c) != req.ClientID {
		writeError(c, http.StatusForbidden, "forbidden: client_id does not match authenticated user")
		return
	}
	kind := booking.Kind(req.Kind)
	if kind == "" {
		kind = booking.KindPointToPoint
	}

	b, err := h.dispatch.RequestBooking(c.Request.Context(), booking.Draft{
		ClientID:        types.ID(req.ClientID),
		Kind:            kind,
		Pickup:          req.Pickup,
		PickupTime:      req.PickupTime,
		Stops:           req.Stops,
		Dropoff:         req.Dropoff,
		DurationHours:   req.DurationHours,
		Passengers:      req.Passengers,
		SpecialRequests: req.SpecialRequests,
		AirportPickup:   req.AirportPickup,
		FlightNumber:    req.FlightNumber,
		Airline:         req.Airline,
	})
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, newBookingView(b))
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.dispatch.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newBookingView(b))
}

func (h *BookingHandler) Quote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if h.pricing == nil {
		writeError(c, http.StatusServiceUnavailable, pricing.ErrQuoteUnavailable.Error())
		return
	}
	b, err := h.dispatch.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	q, err := h.pricing.Quote(c.Request.Context(), b)
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newQuoteView(q))
}

type assignReq struct {
	DriverID *string `json:"driver_id"`
}

func (h *BookingHandler) Assign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := booking.AssignCommand{BookingID: types.ID(id)}
	if req.DriverID != nil && *req.DriverID != "" {
		driverID := types.ID(*req.DriverID)
		cmd.DriverID = &driverID
	}
	b, err := h.dispatch.AssignDriver(c.Request.Context(), cmd)
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newBookingView(b))
}

type fareReq struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (h *BookingHandler) SetFare(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req fareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = h.currency
	}
	b, err := h.dispatch.SetFare(c.Request.Context(), booking.SetFareCommand{
		BookingID: types.ID(id),
		Amount:    types.MoneyFromMajor(req.Amount, currency),
	})
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newBookingView(b))
}

func (h *BookingHandler) RequestPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.dispatch.RequestPayment(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"booking":     newBookingView(b),
		"payment_url": h.dispatch.PaymentURL(b.ID),
	})
}

func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.dispatch.ConfirmPayment(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newBookingView(b))
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *BookingHandler) AdvanceStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	target, ok := booking.ParseStatus(req.Status)
	if !ok {
		writeError(c, http.StatusBadRequest, "unknown status")
		return
	}

	if !middleware.AuthDisabled(c) && middleware.CallerRole(c) == middleware.RoleDriver {
		current, err := h.dispatch.Get(c.Request.Context(), types.ID(id))
		if err != nil {
			writeDispatchError(c, err)
			return
		}
		if !current.HasDriver(types.ID(middleware.CallerUID(c))) {
			writeError(c, http.StatusForbidden, "forbidden: booking is not assigned to authenticated driver")
			return
		}
	}

	b, err := h.dispatch.AdvanceStatus(c.Request.Context(), booking.AdvanceCommand{
		BookingID: types.ID(id),
		Target:    target,
	})
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newBookingView(b))
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req cancelReq
	// The body is optional.
	_ = c.ShouldBindJSON(&req)
	b, err := h.dispatch.Cancel(c.Request.Context(), booking.CancelCommand{
		BookingID: types.ID(id),
		Reason:    req.Reason,
	})
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newBookingView(b))
}
