package model

import (
	"strings"
	"time"
)

// PublicDanceType is the value the club uses for courses without a category.
const PublicDanceType = "public"

// Course represents a row in the `courses` table. CourseDate is kept in
// "YYYY-MM-DD" form and TimeSlot in canonical "HH:MM-HH:MM" form so both
// sort lexicographically.
type Course struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Instructor  string    `json:"instructor"`
	Location    string    `json:"location"`
	CourseDate  string    `json:"course_date"`
	TimeSlot    string    `json:"time_slot"`
	MaxCapacity int       `json:"max_capacity"`
	Description string    `json:"description"`
	DanceType   *string   `json:"dance_type"` // nil means public
	LeaderID    *uint64   `json:"leader_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultMaxCapacity applies when a course is created without a capacity.
const DefaultMaxCapacity = 20

// Category returns the course category, or "" for public courses.
func (c Course) Category() string {
	if c.DanceType == nil {
		return ""
	}
	v := strings.TrimSpace(*c.DanceType)
	if strings.EqualFold(v, PublicDanceType) {
		return ""
	}
	return v
}

// LedBy reports whether userID is the course's assigned leader.
func (c Course) LedBy(userID uint64) bool {
	return c.LeaderID != nil && *c.LeaderID == userID
}

// CourseWithCount decorates a course with its confirmed booking count.
type CourseWithCount struct {
	Course
	BookedCount int `json:"booked_count"`
}

// Booker is a confirmed participant listed on a course detail view.
type Booker struct {
	UserID   uint64    `json:"user_id"`
	Username string    `json:"username,omitempty"`
	BookedAt time.Time `json:"booked_at"`
}

// CategoryAssignment summarizes how many courses a category or leader holds.
type CategoryAssignment struct {
	DanceType   string  `json:"dance_type"`
	LeaderID    *uint64 `json:"leader_id"`
	CourseCount int     `json:"course_count"`
}
