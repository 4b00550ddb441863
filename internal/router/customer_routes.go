package router

import (
	"github.com/labstack/echo/v4"

	"github.com/barbergo/loyalty-wheel/internal/handler"
	"github.com/barbergo/loyalty-wheel/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Customers can view
// their wheel, check monthly eligibility, spin, and list their coupons.
// The spin endpoint additionally sits behind the Redis token-bucket
// limiter so a stuck client cannot hammer the draw path.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.GET("/wheel", h.GetWheel)
	g.GET("/wheel/eligibility", h.Eligibility)
	if limiter != nil {
		g.POST("/wheel/draw", h.Draw, limiter)
	} else {
		g.POST("/wheel/draw", h.Draw)
	}
	g.GET("/my-plays", h.ListPlays)
}
