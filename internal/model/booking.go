package model

import "time"

// BookingStatus is the persisted status of a booking row.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCanceled  BookingStatus = "canceled"
)

// Booking mirrors the `bookings` table. (UserID, CourseID) is unique; a
// canceled row is reactivated rather than duplicated.
type Booking struct {
	ID        uint64        `json:"id"`
	UserID    uint64        `json:"user_id"`
	CourseID  uint64        `json:"course_id"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BookingWithCourse pairs a booking with the course it reserves.
type BookingWithCourse struct {
	Booking
	Course Course `json:"course"`
}
