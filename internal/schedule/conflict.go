package schedule

import (
	"strings"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

// Candidate describes a course placement to check. ExcludeID, when non-zero,
// is skipped so an updated course never conflicts with itself.
type Candidate struct {
	CourseDate string
	Location   string
	Slot       Slot
	ExcludeID  uint64
}

// Overlaps reports whether two half-open slots share at least one minute.
// Touching slots (one ends when the other starts) do not overlap.
func Overlaps(a, b Slot) bool {
	return !(a.End <= b.Start || b.End <= a.Start)
}

// SameLocation compares locations ignoring case and surrounding whitespace.
func SameLocation(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NormalizeLocation returns the form used for lock keys and indexes.
func NormalizeLocation(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DetectConflicts returns the courses in existing that share the candidate's
// date and location and overlap its slot. A stored slot that no longer parses
// counts as a conflict.
func DetectConflicts(c Candidate, existing []model.Course) []model.Course {
	var out []model.Course
	for _, ex := range existing {
		if c.ExcludeID != 0 && ex.ID == c.ExcludeID {
			continue
		}
		if ex.CourseDate != c.CourseDate || !SameLocation(ex.Location, c.Location) {
			continue
		}
		slot, err := ParseSlot(ex.TimeSlot)
		if err != nil || Overlaps(c.Slot, slot) {
			out = append(out, ex)
		}
	}
	return out
}
