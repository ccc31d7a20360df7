package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/danceclub-booking/internal/service"
)

// PublicHandler serves the unauthenticated catalog views.
type PublicHandler struct {
	Catalog *service.CatalogService
}

// NewPublicHandler panics on a nil catalog.
func NewPublicHandler(catalog *service.CatalogService) *PublicHandler {
	if catalog == nil {
		panic("nil catalog passed to NewPublicHandler")
	}
	return &PublicHandler{Catalog: catalog}
}

// ListCourses handles GET /v1/courses.
func (h *PublicHandler) ListCourses(c echo.Context) error {
	items, err := h.Catalog.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetCourse handles GET /v1/courses/:id and includes the confirmed bookers.
func (h *PublicHandler) GetCourse(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	detail, err := h.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Week handles GET /v1/schedule/week?date=YYYY-MM-DD. Without a date the
// current week is returned.
func (h *PublicHandler) Week(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = today()
	}
	week, err := h.Catalog.Week(c.Request().Context(), date)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, week)
}
