// README: API gateway; wires middleware and delegates to module services.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"limo/internal/http/middleware"
	"limo/internal/infra"
	"limo/internal/modules/booking"
	"limo/internal/modules/gateway"
	"limo/internal/modules/pricing"
)

type ServerDeps struct {
	Dispatch *booking.Service
	Gateway  *gateway.Service
	Pricing  *pricing.Service
	// Verifier nil disables authentication.
	Verifier    infra.TokenVerifier
	Log         *slog.Logger
	CORSOrigins []string
	Currency    string
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(s.deps.Log))
	r.Use(middleware.Logging(s.deps.Log))
	r.Use(cors.New(corsConfig(s.deps.CORSOrigins)))

	registerRoutes(r, s.deps)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
