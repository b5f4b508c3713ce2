// README: Read handlers backing the operator board, driver view and client view.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"limo/internal/modules/booking"
	"limo/internal/modules/gateway"
	"limo/internal/types"
)

type BoardHandler struct {
	gateway *gateway.Service
}

func NewBoardHandler(gw *gateway.Service) *BoardHandler {
	return &BoardHandler{gateway: gw}
}

func (h *BoardHandler) Snapshot(c *gin.Context) {
	snap, err := h.gateway.Snapshot(c.Request.Context())
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"bookings": newBookingViews(snap.Bookings),
		"drivers":  newDriverViews(snap.Drivers),
		"clients":  newClientViews(snap.Clients),
		"taken_at": snap.TakenAt,
	})
}

func (h *BoardHandler) ListBookings(c *gin.Context) {
	var f gateway.Filter
	if v := c.Query("date"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		f.Date = &d
	}
	if v := c.Query("status"); v != "" {
		s, ok := booking.ParseStatus(v)
		if !ok {
			writeError(c, http.StatusBadRequest, "unknown status")
			return
		}
		f.Status = s
	}
	if v := c.Query("payment_status"); v != "" {
		p, ok := booking.ParsePaymentStatus(v)
		if !ok {
			writeError(c, http.StatusBadRequest, "unknown payment_status")
			return
		}
		f.PaymentStatus = p
	}
	f.DriverID = types.ID(c.Query("driver_id"))
	f.ClientID = types.ID(c.Query("client_id"))

	bookings, err := h.gateway.ListBookings(c.Request.Context(), f)
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": newBookingViews(bookings)})
}

func (h *BoardHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.gateway.ListDrivers(c.Request.Context())
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"drivers": newDriverViews(drivers)})
}

func (h *BoardHandler) ListClients(c *gin.Context) {
	clients, err := h.gateway.ListClients(c.Request.Context())
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"clients": newClientViews(clients)})
}

func (h *BoardHandler) NearbyDrivers(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}
	radius := 5.0
	if v := c.Query("radius_km"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			writeError(c, http.StatusBadRequest, "radius_km must be positive")
			return
		}
		radius = r
	}
	found, err := h.gateway.NearbyDrivers(c.Request.Context(), types.Point{Lat: lat, Lng: lng}, radius)
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"drivers": newNearbyViews(found)})
}

func (h *BoardHandler) DriverTrips(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	trips, err := h.gateway.DriverTrips(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": newBookingViews(trips)})
}

func (h *BoardHandler) ClientBookings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	bookings, err := h.gateway.ClientBookings(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": newBookingViews(bookings)})
}

func (h *BoardHandler) Notices(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	writeJSON(c, http.StatusOK, gin.H{"notices": newNoticeViews(h.gateway.Notices(limit))})
}
