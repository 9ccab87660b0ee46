package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter sets up all Echo routes and middleware. A nil gatherer disables
// the /metrics endpoint.
func NewRouter(h *Handler, auth echo.MiddlewareFunc, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = newRequestValidator()

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// No auth required
	e.GET("/health", h.Health)
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API requires authentication
	v1 := e.Group("")
	v1.Use(auth)

	v1.POST("/notifications/init", h.Initialize)
	v1.POST("/notifications/sync", h.Sync)
	v1.GET("/notifications/scheduled", h.ListScheduled)
	v1.DELETE("/notifications/scheduled", h.CancelAll)

	v1.GET("/notifications/permission", h.GetPermission)
	v1.POST("/notifications/permission", h.RequestPermission)
	v1.PUT("/notifications/permission", h.ReportPermission)

	v1.POST("/items/events", h.ItemEvent)
	v1.DELETE("/items/:name/notifications", h.CancelItem)

	// SSE endpoint
	v1.GET("/notifications/stream", h.Stream)

	return e
}
