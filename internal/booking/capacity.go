package booking

import "errors"

// ErrCourseFull is returned when no seat is left.
var ErrCourseFull = errors.New("course is full")

// Admit allows one more confirmed booking iff confirmed < maxCapacity.
func Admit(maxCapacity, confirmed int) error {
	if confirmed >= maxCapacity {
		return ErrCourseFull
	}
	return nil
}

// Remaining returns the free seats, never negative.
func Remaining(maxCapacity, confirmed int) int {
	if confirmed >= maxCapacity {
		return 0
	}
	return maxCapacity - confirmed
}
