package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/danceclub-booking/internal/booking"
	"github.com/iliyamo/danceclub-booking/internal/model"
	"github.com/iliyamo/danceclub-booking/internal/policy"
	"github.com/iliyamo/danceclub-booking/internal/repository"
	"github.com/iliyamo/danceclub-booking/internal/service"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func TestWriteServiceErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&service.ValidationError{Field: "time_slot", Err: errors.New("bad")}, http.StatusBadRequest},
		{&service.ScheduleConflictError{Conflicts: []model.Course{{ID: 1}}}, http.StatusConflict},
		{fmt.Errorf("cancel: %w", booking.ErrNoBooking), http.StatusNotFound},
		{fmt.Errorf("get: %w", repository.ErrNotFound), http.StatusNotFound},
		{policy.ErrRoleIneligible, http.StatusBadRequest},
		{policy.ErrForbidden, http.StatusForbidden},
		{booking.ErrAlreadyBooked, http.StatusBadRequest},
		{booking.ErrCourseFull, http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, rec := newContext()
		assert.NoError(t, writeServiceError(c, tc.err))
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	c, rec := newContext()
	assert.NoError(t, writeServiceError(c, errors.New("dial tcp 10.0.0.3:3306")))
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestParseID(t *testing.T) {
	c, _ := newContext()
	c.SetParamNames("id")
	for raw, ok := range map[string]bool{"7": true, "0": false, "-1": false, "x": false} {
		c.SetParamValues(raw)
		_, got := parseID(c, "id")
		assert.Equal(t, ok, got, raw)
	}
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("down") }

func TestHealthReportsUnavailable(t *testing.T) {
	c, rec := newContext()
	assert.NoError(t, Health(downStore{})(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
