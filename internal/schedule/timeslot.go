// Package schedule holds the pure scheduling rules for dance courses: time
// slot parsing, overlap detection and the weekly calendar window. Nothing in
// this package touches storage, so every rule can be exercised directly.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Slot duration limits in minutes, both inclusive.
const (
	MinDurationMinutes = 30
	MaxDurationMinutes = 240
)

// ErrInvalidSlot is the parent of every slot validation error so callers can
// match any of them with errors.Is.
var ErrInvalidSlot = errors.New("invalid time slot")

var (
	// ErrInvalidFormat is returned when the text is not "HH:MM-HH:MM" or a
	// clock value is out of range.
	ErrInvalidFormat = fmt.Errorf("%w: expected HH:MM-HH:MM", ErrInvalidSlot)
	// ErrNonPositiveDuration is returned when the end is not after the start.
	ErrNonPositiveDuration = fmt.Errorf("%w: end must be after start", ErrInvalidSlot)
	// ErrTooLong is returned for slots longer than MaxDurationMinutes.
	ErrTooLong = fmt.Errorf("%w: longer than %d minutes", ErrInvalidSlot, MaxDurationMinutes)
	// ErrTooShort is returned for slots shorter than MinDurationMinutes.
	ErrTooShort = fmt.Errorf("%w: shorter than %d minutes", ErrInvalidSlot, MinDurationMinutes)
)

// Slot is a validated half-open interval [Start, End) expressed in minutes
// since midnight.
type Slot struct {
	Start int
	End   int
}

// ParseSlot parses "HH:MM-HH:MM" (single digit hours allowed, whitespace
// around the dash tolerated) and enforces the duration limits.
func ParseSlot(s string) (Slot, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Slot{}, ErrInvalidFormat
	}
	start, err := parseClock(left)
	if err != nil {
		return Slot{}, err
	}
	end, err := parseClock(right)
	if err != nil {
		return Slot{}, err
	}
	slot := Slot{Start: start, End: end}
	d := slot.Duration()
	switch {
	case d <= 0:
		return Slot{}, ErrNonPositiveDuration
	case d > MaxDurationMinutes:
		return Slot{}, ErrTooLong
	case d < MinDurationMinutes:
		return Slot{}, ErrTooShort
	}
	return slot, nil
}

// MustParseSlot is ParseSlot for literals known to be valid; it panics otherwise.
func MustParseSlot(s string) Slot {
	slot, err := ParseSlot(s)
	if err != nil {
		panic(err)
	}
	return slot
}

// Duration returns the slot length in minutes.
func (s Slot) Duration() int { return s.End - s.Start }

// String renders the canonical zero-padded form.
func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", s.Start/60, s.Start%60, s.End/60, s.End%60)
}

// Canonicalize parses s and returns its canonical text.
func Canonicalize(s string) (string, error) {
	slot, err := ParseSlot(s)
	if err != nil {
		return "", err
	}
	return slot.String(), nil
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, ErrInvalidFormat
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 || !isDigits(hh) {
		return 0, ErrInvalidFormat
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || !isDigits(mm) {
		return 0, ErrInvalidFormat
	}
	return h*60 + m, nil
}

// isDigits rejects signs that strconv.Atoi would accept.
func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
