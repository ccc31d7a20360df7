package handler // handler translates HTTP requests into service calls

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/danceclub-booking/internal/booking"
	"github.com/iliyamo/danceclub-booking/internal/middleware"
	"github.com/iliyamo/danceclub-booking/internal/model"
	"github.com/iliyamo/danceclub-booking/internal/policy"
	"github.com/iliyamo/danceclub-booking/internal/repository"
	"github.com/iliyamo/danceclub-booking/internal/service"
)

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
}

// actor returns the authenticated caller or writes a 401.
func actor(c echo.Context) (model.Actor, error) {
	a, err := middleware.ActorFrom(c)
	if err != nil {
		return model.Actor{}, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return a, nil
}

// writeServiceError maps domain errors onto status codes. Anything
// unrecognized is logged and reported as a 500 without details.
func writeServiceError(c echo.Context, err error) error {
	var (
		ve *service.ValidationError
		ce *service.ScheduleConflictError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
	case errors.As(err, &ce):
		return c.JSON(http.StatusConflict, echo.Map{"error": "schedule conflict", "conflicts": ce.Conflicts})
	case errors.Is(err, booking.ErrNoBooking):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	case errors.Is(err, policy.ErrRoleIneligible):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only members can book courses"})
	case errors.Is(err, policy.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrAlreadyBooked):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "already booked"})
	case errors.Is(err, booking.ErrCourseFull):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "course is full"})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
