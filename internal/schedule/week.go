package schedule

import (
	"errors"
	"sort"
	"time"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

// DateLayout is the wire and storage form of a course date.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("invalid date: expected YYYY-MM-DD")

// ParseDate parses a calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// CanonicalDate validates s and returns it in DateLayout form.
func CanonicalDate(s string) (string, error) {
	d, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return d.Format(DateLayout), nil
}

// WeekOf returns the Monday on or before d and the Sunday after it.
func WeekOf(d time.Time) (start, end time.Time) {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	start = d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// Day is one calendar day of a week view.
type Day struct {
	Date    string                  `json:"date"`
	Weekday string                  `json:"weekday"`
	Courses []model.CourseWithCount `json:"courses"`
}

// GroupWeek lays courses out over the seven days starting at start. Courses
// outside the window are dropped; each day is ordered by slot start.
func GroupWeek(start time.Time, courses []model.CourseWithCount) []Day {
	days := make([]Day, 7)
	index := make(map[string]int, 7)
	for i := range days {
		d := start.AddDate(0, 0, i)
		days[i] = Day{Date: d.Format(DateLayout), Weekday: d.Weekday().String(), Courses: []model.CourseWithCount{}}
		index[days[i].Date] = i
	}
	SortCourses(courses)
	for _, c := range courses {
		if i, ok := index[c.CourseDate]; ok {
			days[i].Courses = append(days[i].Courses, c)
		}
	}
	return days
}

// SortCourses orders by date, then slot start, then id.
func SortCourses(cs []model.CourseWithCount) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.CourseDate != b.CourseDate {
			return a.CourseDate < b.CourseDate
		}
		if a.TimeSlot != b.TimeSlot {
			return a.TimeSlot < b.TimeSlot
		}
		return a.ID < b.ID
	})
}
