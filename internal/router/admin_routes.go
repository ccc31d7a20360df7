package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/danceclub-booking/internal/middleware"
	"github.com/iliyamo/danceclub-booking/internal/model"
)

// RegisterAdmin registers course management under /v1/admin/courses for
// admins and leaders. Ownership and admin-only operations are enforced by
// the catalog's policy checks.
func RegisterAdmin(e *echo.Echo, d Deps) {
	g := e.Group(
		"/v1/admin/courses",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleLeader),
		d.RateLimit,
		d.Cache.InvalidateOnWrite(),
	)

	g.GET("", d.Admin.ListManaged)
	g.POST("", d.Admin.CreateCourse)
	g.GET("/assignments", d.Admin.Assignments)
	g.PUT("/:id", d.Admin.UpdateCourse)
	g.PATCH("/:id", d.Admin.UpdateCourse)
	g.DELETE("/:id", d.Admin.DeleteCourse)
	g.PUT("/:id/assign", d.Admin.AssignCourse)
}
