package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

var (
	errRequired         = errors.New("is required")
	errNonPositive      = errors.New("must be at least 1")
	errBelowBooked      = errors.New("is below the number of confirmed bookings")
	errNothingToAssign  = errors.New("dance_type or leader_id is required")
	ErrScheduleConflict = errors.New("schedule conflict")
)

// ScheduleConflictError names the courses that already occupy the slot.
type ScheduleConflictError struct {
	Conflicts []model.Course
}

func (e *ScheduleConflictError) Error() string {
	names := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		names = append(names, fmt.Sprintf("%q (%s %s)", c.Name, c.CourseDate, c.TimeSlot))
	}
	return "schedule conflict with " + strings.Join(names, ", ")
}

func (e *ScheduleConflictError) Unwrap() error { return ErrScheduleConflict }
