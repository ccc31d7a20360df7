package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/danceclub-booking/internal/schedule"
	"github.com/iliyamo/danceclub-booking/internal/service"
)

// AdminHandler serves course management for admins and leaders.
type AdminHandler struct {
	Catalog *service.CatalogService
}

// NewAdminHandler panics on a nil catalog.
func NewAdminHandler(catalog *service.CatalogService) *AdminHandler {
	if catalog == nil {
		panic("nil catalog passed to NewAdminHandler")
	}
	return &AdminHandler{Catalog: catalog}
}

// courseRequest is the body of create and update calls. On update only the
// present fields change; leader_id 0 clears the leader.
type courseRequest struct {
	Name        *string `json:"name"`
	Instructor  *string `json:"instructor"`
	Location    *string `json:"location"`
	CourseDate  *string `json:"course_date"`
	TimeSlot    *string `json:"time_slot"`
	MaxCapacity *int    `json:"max_capacity"`
	Description *string `json:"description"`
	DanceType   *string `json:"dance_type"`
	LeaderID    *uint64 `json:"leader_id"`
}

type assignRequest struct {
	DanceType *string `json:"dance_type"`
	LeaderID  *uint64 `json:"leader_id"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func today() string { return time.Now().UTC().Format(schedule.DateLayout) }

// ListManaged handles GET /v1/admin/courses.
func (h *AdminHandler) ListManaged(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	items, err := h.Catalog.Managed(c.Request().Context(), a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateCourse handles POST /v1/admin/courses.
func (h *AdminHandler) CreateCourse(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	created, err := h.Catalog.Create(c.Request().Context(), a, service.CourseInput{
		Name:        deref(req.Name),
		Instructor:  deref(req.Instructor),
		Location:    deref(req.Location),
		CourseDate:  deref(req.CourseDate),
		TimeSlot:    deref(req.TimeSlot),
		MaxCapacity: req.MaxCapacity,
		Description: deref(req.Description),
		DanceType:   req.DanceType,
		LeaderID:    req.LeaderID,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateCourse handles PUT and PATCH /v1/admin/courses/:id.
func (h *AdminHandler) UpdateCourse(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	updated, err := h.Catalog.Update(c.Request().Context(), a, id, service.CoursePatch{
		Name:        req.Name,
		Instructor:  req.Instructor,
		Location:    req.Location,
		CourseDate:  req.CourseDate,
		TimeSlot:    req.TimeSlot,
		MaxCapacity: req.MaxCapacity,
		Description: req.Description,
		DanceType:   req.DanceType,
		LeaderID:    req.LeaderID,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteCourse handles DELETE /v1/admin/courses/:id.
func (h *AdminHandler) DeleteCourse(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	if err := h.Catalog.Delete(c.Request().Context(), a, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "course deleted", "id": id})
}

// Assignments handles GET /v1/admin/courses/assignments.
func (h *AdminHandler) Assignments(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	items, err := h.Catalog.Assignments(c.Request().Context(), a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// AssignCourse handles PUT /v1/admin/courses/:id/assign.
func (h *AdminHandler) AssignCourse(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	updated, err := h.Catalog.Assign(c.Request().Context(), a, id, req.DanceType, req.LeaderID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}
