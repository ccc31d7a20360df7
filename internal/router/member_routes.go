package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/danceclub-booking/internal/middleware"
)

// RegisterMember registers booking endpoints under /v1. All routes require
// a valid JWT. Role eligibility is decided by the booking service so that a
// non-member gets a 400 rather than a 403.
func RegisterMember(e *echo.Echo, d Deps) {
	g := e.Group("/v1", middleware.JWTAuth(d.JWTSecret))

	writes := []echo.MiddlewareFunc{d.RateLimit, d.Cache.InvalidateOnWrite()}
	g.POST("/courses/:id/book", d.Bookings.Book, writes...)
	g.DELETE("/courses/:id/cancel", d.Bookings.Cancel, writes...)

	g.GET("/me/bookings", d.Bookings.MyBookings)
	g.GET("/me/booking-status/:course_id", d.Bookings.Status)
}
