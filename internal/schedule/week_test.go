package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

func TestWeekOf(t *testing.T) {
	cases := map[string]string{
		"2024-05-01": "2024-04-29", // Wednesday
		"2024-04-29": "2024-04-29", // Monday
		"2024-05-05": "2024-04-29", // Sunday
		"2024-01-01": "2024-01-01",
	}
	for in, monday := range cases {
		d, err := ParseDate(in)
		require.NoError(t, err)
		start, end := WeekOf(d)
		assert.Equal(t, monday, start.Format(DateLayout), in)
		assert.Equal(t, 6*24.0, end.Sub(start).Hours(), in)
	}
}

func TestParseDateRejects(t *testing.T) {
	for _, in := range []string{"", "2024-13-01", "01.05.2024", "2024-5-1"} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrInvalidDate, in)
	}
}

func TestGroupWeek(t *testing.T) {
	start, _ := WeekOf(mustDate(t, "2024-05-01"))
	courses := []model.CourseWithCount{
		{Course: course(1, "2024-05-01", "A", "19:00-20:00")},
		{Course: course(2, "2024-05-01", "A", "09:00-10:00")},
		{Course: course(3, "2024-04-29", "A", "18:00-19:00")},
		{Course: course(4, "2024-05-07", "A", "18:00-19:00")}, // next week
	}
	days := GroupWeek(start, courses)
	require.Len(t, days, 7)
	assert.Equal(t, "2024-04-29", days[0].Date)
	assert.Equal(t, "Monday", days[0].Weekday)
	require.Len(t, days[0].Courses, 1)
	require.Len(t, days[2].Courses, 2)
	assert.Equal(t, uint64(2), days[2].Courses[0].ID)
	assert.Equal(t, uint64(1), days[2].Courses[1].ID)
	assert.NotNil(t, days[6].Courses)
	assert.Empty(t, days[6].Courses)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}
