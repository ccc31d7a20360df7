package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/danceclub-booking/internal/service"
)

// BookingHandler serves member bookings.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler panics on a nil service.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

// Book handles POST /v1/courses/:id/book. A new booking answers 201; a
// reactivated one answers 200.
func (h *BookingHandler) Book(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	res, err := h.Bookings.Book(c.Request().Context(), a, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"message": "booking confirmed", "booking": res.Booking})
}

// Cancel handles DELETE /v1/courses/:id/cancel. Repeated cancels answer 200.
func (h *BookingHandler) Cancel(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	res, err := h.Bookings.Cancel(c.Request().Context(), a, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	msg := "booking canceled"
	if !res.Changed {
		msg = "booking already canceled"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "booking": res.Booking})
}

// MyBookings handles GET /v1/me/bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	items, err := h.Bookings.MyBookings(c.Request().Context(), a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Status handles GET /v1/me/booking-status/:course_id.
func (h *BookingHandler) Status(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "course_id")
	if !ok {
		return badID(c)
	}
	st, err := h.Bookings.Status(c.Request().Context(), a, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"course_id": id, "status": st})
}
