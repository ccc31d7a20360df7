package repository

import (
	"context"

	"github.com/iliyamo/danceclub-booking/internal/model"
	"github.com/iliyamo/danceclub-booking/internal/schedule"
)

// Store is the persistence boundary of the booking core. Reads run outside
// a transaction; every mutation goes through WithinTx, which commits when fn
// returns nil and rolls back otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error

	ListCourses(ctx context.Context) ([]model.CourseWithCount, error)
	// ListCoursesBetween returns courses whose date is within [from, to],
	// both given as YYYY-MM-DD.
	ListCoursesBetween(ctx context.Context, from, to string) ([]model.CourseWithCount, error)
	GetCourse(ctx context.Context, id uint64) (model.CourseWithCount, error)
	ListBookers(ctx context.Context, courseID uint64) ([]model.Booker, error)
	// FindBooking returns nil and no error when the member never booked.
	FindBooking(ctx context.Context, userID, courseID uint64) (*model.Booking, error)
	ListConfirmedByUser(ctx context.Context, userID uint64) ([]model.BookingWithCourse, error)
	CategoryAssignments(ctx context.Context) ([]model.CategoryAssignment, error)
}

// Tx is the unit of work handed to WithinTx callbacks.
type Tx interface {
	// LockCourse reads a course and holds its row lock until the end of the
	// transaction. It serializes every booking of that course.
	LockCourse(ctx context.Context, id uint64) (model.Course, error)
	// LockSchedule takes the (date, location) schedule lock and returns the
	// courses currently placed there.
	LockSchedule(ctx context.Context, courseDate, location string) ([]model.Course, error)
	InsertCourse(ctx context.Context, c *model.Course) error
	UpdateCourse(ctx context.Context, c *model.Course) error
	// DeleteCourse removes the course and its bookings.
	DeleteCourse(ctx context.Context, id uint64) error

	CountConfirmed(ctx context.Context, courseID uint64) (int, error)
	// LockBooking returns the member's booking row locked, or nil.
	LockBooking(ctx context.Context, userID, courseID uint64) (*model.Booking, error)
	InsertBooking(ctx context.Context, b *model.Booking) error
	SetBookingStatus(ctx context.Context, b *model.Booking, status model.BookingStatus) error
}

// ScheduleKey is the lock identity of a (date, location) pair.
func ScheduleKey(courseDate, location string) string {
	return courseDate + "|" + schedule.NormalizeLocation(location)
}
