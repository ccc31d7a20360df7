package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/danceclub-booking/internal/handler"
	"github.com/iliyamo/danceclub-booking/internal/middleware"
)

// Deps collects everything the route groups need.
type Deps struct {
	Public    *handler.PublicHandler
	Admin     *handler.AdminHandler
	Bookings  *handler.BookingHandler
	Store     handler.Pinger
	JWTSecret string
	Cache     *middleware.ResponseCache
	RateLimit echo.MiddlewareFunc
}

// Register wires every route group onto e.
func Register(e *echo.Echo, d Deps) {
	if d.RateLimit == nil {
		d.RateLimit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	RegisterPublic(e, d)
	RegisterMember(e, d)
	RegisterAdmin(e, d)
}

// RegisterPublic registers unauthenticated endpoints. Catalog reads are
// served through the response cache.
func RegisterPublic(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.Store))

	cached := d.Cache.Middleware()
	e.GET("/v1/courses", d.Public.ListCourses, cached)
	e.GET("/v1/courses/:id", d.Public.GetCourse, cached)
	e.GET("/v1/schedule/week", d.Public.Week, cached)
}
