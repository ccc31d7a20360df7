// Package queue defines the domain events exchanged over RabbitMQ together
// with the publisher used by the services and the background consumer.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

// Routing keys on the events exchange.
const (
	KeyBookingConfirmed = "booking.confirmed"
	KeyBookingCanceled  = "booking.canceled"
	KeyCourseCreated    = "course.created"
	KeyCourseUpdated    = "course.updated"
	KeyCourseDeleted    = "course.deleted"
)

// BookingEvent is published after a booking transaction commits. It carries
// enough course data for consumers to log it without a database lookup.
type BookingEvent struct {
	EventID    string `json:"event_id"`
	Kind       string `json:"kind"`
	BookingID  uint64 `json:"booking_id"`
	UserID     uint64 `json:"user_id"`
	CourseID   uint64 `json:"course_id"`
	CourseName string `json:"course_name"`
	Location   string `json:"location"`
	CourseDate string `json:"course_date"`
	TimeSlot   string `json:"time_slot"`
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"`
}

// CourseEvent is published after a catalog change commits.
type CourseEvent struct {
	EventID    string `json:"event_id"`
	Kind       string `json:"kind"`
	CourseID   uint64 `json:"course_id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	CourseDate string `json:"course_date"`
	TimeSlot   string `json:"time_slot"`
	DanceType  string `json:"dance_type"`
	ActorID    uint64 `json:"actor_id"`
	OccurredAt string `json:"occurred_at"`
}

// NewBookingEvent builds a booking event with a fresh id.
func NewBookingEvent(kind string, b model.Booking, c model.Course) BookingEvent {
	return BookingEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		BookingID:  b.ID,
		UserID:     b.UserID,
		CourseID:   b.CourseID,
		CourseName: c.Name,
		Location:   c.Location,
		CourseDate: c.CourseDate,
		TimeSlot:   c.TimeSlot,
		Status:     string(b.Status),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewCourseEvent builds a course event with a fresh id.
func NewCourseEvent(kind string, c model.Course, actorID uint64) CourseEvent {
	return CourseEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		CourseID:   c.ID,
		Name:       c.Name,
		Location:   c.Location,
		CourseDate: c.CourseDate,
		TimeSlot:   c.TimeSlot,
		DanceType:  c.Category(),
		ActorID:    actorID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
