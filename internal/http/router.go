// README: HTTP route registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"limo/internal/http/handlers"
	"limo/internal/http/middleware"
)

func registerRoutes(r *gin.Engine, deps ServerDeps) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.Verifier))

	owner := middleware.RequireRole(middleware.RoleOwner)
	driver := middleware.RequireRole(middleware.RoleDriver, middleware.RoleOwner)

	bookingHandler := handlers.NewBookingHandler(deps.Dispatch, deps.Pricing, deps.Currency)
	api.POST("/bookings", bookingHandler.Create)
	api.GET("/bookings/:id", bookingHandler.Get)
	api.GET("/bookings/:id/quote", bookingHandler.Quote)
	api.POST("/bookings/:id/assign", owner, bookingHandler.Assign)
	api.POST("/bookings/:id/fare", owner, bookingHandler.SetFare)
	api.POST("/bookings/:id/payment-link", owner, bookingHandler.RequestPayment)
	api.POST("/bookings/:id/payment/confirm", bookingHandler.ConfirmPayment)
	api.POST("/bookings/:id/status", driver, bookingHandler.AdvanceStatus)
	api.POST("/bookings/:id/cancel", owner, bookingHandler.Cancel)

	boardHandler := handlers.NewBoardHandler(deps.Gateway)
	api.GET("/snapshot", boardHandler.Snapshot)
	api.GET("/bookings", boardHandler.ListBookings)
	api.GET("/drivers", boardHandler.ListDrivers)
	api.GET("/drivers/nearby", boardHandler.NearbyDrivers)
	api.GET("/drivers/:id/trips", boardHandler.DriverTrips)
	api.GET("/clients", boardHandler.ListClients)
	api.GET("/clients/:id/bookings", boardHandler.ClientBookings)
	api.GET("/operator/notices", owner, boardHandler.Notices)
}
