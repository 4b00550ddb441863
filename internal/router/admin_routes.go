package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/barbergo/loyalty-wheel/internal/handler"
	"github.com/barbergo/loyalty-wheel/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and ADMIN role; the tenant is read
// from the token's shop claim inside each handler.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Prize catalog ----
	g.POST("/prizes", a.CreatePrize)
	g.GET("/prizes", a.ListPrizes) // includes per-pool chance usage
	g.GET("/prizes/:id", a.GetPrize)
	g.PUT("/prizes/:id", a.UpdatePrize)
	g.PATCH("/prizes/:id", a.UpdatePrize) // allow partial/semantic updates via PATCH as well
	g.DELETE("/prizes/:id", a.DeletePrize)

	// ---- Redemption desk ----
	g.GET("/plays", a.ListPlays) // ?status=ACTIVE|REDEEMED|EXPIRED
	g.GET("/plays/:id", a.GetPlay)
	g.POST("/plays/:id/redeem", a.RedeemPlay)

	// ---- Shop configuration ----
	g.GET("/shop", a.GetShop)
	g.PUT("/shop", a.UpdateShop)
	g.PATCH("/shop", a.UpdateShop)
}
