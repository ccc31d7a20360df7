package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"18:00-19:00", "18:30-19:30", true},
		{"18:00-19:00", "19:00-20:00", false}, // touching
		{"18:00-19:00", "17:00-18:00", false},
		{"18:00-20:00", "18:30-19:00", true}, // containment
		{"18:00-19:00", "18:00-19:00", true}, // identical
		{"08:00-09:00", "10:00-11:00", false},
	}
	for _, tc := range cases {
		a, b := MustParseSlot(tc.a), MustParseSlot(tc.b)
		assert.Equal(t, tc.want, Overlaps(a, b), "%s vs %s", tc.a, tc.b)
		assert.Equal(t, tc.want, Overlaps(b, a), "%s vs %s (swapped)", tc.b, tc.a)
	}
}

func course(id uint64, date, location, slot string) model.Course {
	return model.Course{ID: id, Name: "c", CourseDate: date, Location: location, TimeSlot: slot}
}

func TestDetectConflicts(t *testing.T) {
	existing := []model.Course{
		course(1, "2024-05-01", "Studio A", "18:00-19:30"),
		course(2, "2024-05-01", "Studio B", "18:00-19:30"),
		course(3, "2024-05-02", "Studio A", "18:00-19:30"),
		course(4, "2024-05-01", "Studio A", "19:30-21:00"),
	}

	cand := Candidate{CourseDate: "2024-05-01", Location: " studio a ", Slot: MustParseSlot("19:00-20:00")}
	got := DetectConflicts(cand, existing)
	ids := []uint64{}
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []uint64{1, 4}, ids)

	cand.Slot = MustParseSlot("19:30-20:00")
	cand.ExcludeID = 4
	assert.Empty(t, DetectConflicts(cand, existing))
}

func TestDetectConflictsFailsClosedOnBadStoredSlot(t *testing.T) {
	existing := []model.Course{course(9, "2024-05-01", "Hall", "garbage")}
	cand := Candidate{CourseDate: "2024-05-01", Location: "Hall", Slot: MustParseSlot("08:00-09:00")}
	assert.Len(t, DetectConflicts(cand, existing), 1)
}

func TestSameLocation(t *testing.T) {
	assert.True(t, SameLocation("Studio A", "  studio a"))
	assert.False(t, SameLocation("Studio A", "Studio B"))
	assert.Equal(t, "studio a", NormalizeLocation("  Studio A "))
}
