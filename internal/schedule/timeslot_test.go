package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotAccepts(t *testing.T) {
	cases := map[string]string{
		"18:00-19:30":     "18:00-19:30",
		"9:00-10:00":      "09:00-10:00",
		" 09:00 - 10:00 ": "09:00-10:00",
		"10:00-10:30":     "10:00-10:30", // 30 minutes
		"10:00-14:00":     "10:00-14:00", // 240 minutes
		"00:00-00:30":     "00:00-00:30",
		"20:00-23:59":     "20:00-23:59",
	}
	for in, want := range cases {
		slot, err := ParseSlot(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, slot.String(), in)
	}
}

func TestParseSlotRejects(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"", ErrInvalidFormat},
		{"1800-1930", ErrInvalidFormat},
		{"18:00", ErrInvalidFormat},
		{"24:00-25:00", ErrInvalidFormat},
		{"18:60-19:30", ErrInvalidFormat},
		{"ab:cd-ef:gh", ErrInvalidFormat},
		{"+8:00-09:00", ErrInvalidFormat},
		{"18:0-19:30", ErrInvalidFormat},
		{"19:00-18:00", ErrNonPositiveDuration},
		{"18:00-18:00", ErrNonPositiveDuration},
		{"10:00-10:29", ErrTooShort}, // 29 minutes
		{"10:00-14:01", ErrTooLong},  // 241 minutes
	}
	for _, tc := range cases {
		_, err := ParseSlot(tc.in)
		assert.ErrorIs(t, err, tc.want, tc.in)
		assert.ErrorIs(t, err, ErrInvalidSlot, tc.in)
	}
}

func TestSlotDuration(t *testing.T) {
	assert.Equal(t, 90, MustParseSlot("18:00-19:30").Duration())
}

func TestCanonicalize(t *testing.T) {
	got, err := Canonicalize("8:15-9:45")
	require.NoError(t, err)
	assert.Equal(t, "08:15-09:45", got)

	_, err = Canonicalize("8-9")
	assert.Error(t, err)
}
