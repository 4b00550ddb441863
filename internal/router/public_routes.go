package router

import (
	"github.com/labstack/echo/v4"

	"github.com/barbergo/loyalty-wheel/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints on the
// provided Echo instance.  The PublicHandler returns sanitized shop and
// wheel data for guests.  When a cache middleware is supplied (Redis
// available), responses are served from cache; directory pages change
// rarely and this keeps wheel-page loads off MySQL.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{}
	if cache != nil {
		mws = append(mws, cache)
	}
	// Directory of all shops running the wheel.
	e.GET("/v1/shops", p.ListShops, mws...)
	// One shop's branding plus a wheel preview (?segment= picks the pool).
	e.GET("/v1/shops/:slug", p.GetShop, mws...)
}
