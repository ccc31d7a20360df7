// Package booking holds the booking state machine and the capacity guard.
// Both are pure; the service layer runs them inside a transaction that holds
// the course row lock.
package booking

import (
	"errors"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

// State is the per (member, course) booking state.
type State string

const (
	Unbooked  State = "not_booked"
	Confirmed State = "confirmed"
	Canceled  State = "canceled"
)

// Action is a member request against a booking.
type Action string

const (
	ActionBook   Action = "book"
	ActionCancel Action = "cancel"
)

// Effect is the persistence step a transition requires.
type Effect int

const (
	EffectNone       Effect = iota
	EffectInsert            // new booking row
	EffectReactivate        // canceled row back to confirmed
	EffectCancel            // confirmed row to canceled
)

var (
	ErrAlreadyBooked = errors.New("already booked")
	ErrNoBooking     = errors.New("booking not found")
	ErrBadTransition = errors.New("unsupported booking transition")
)

// Outcome is the result of a legal transition.
type Outcome struct {
	Next   State
	Effect Effect
	// NeedsSeat is true when the capacity guard must admit the transition.
	NeedsSeat bool
}

// StateOf maps a stored booking (nil when absent) to its state.
func StateOf(b *model.Booking) State {
	if b == nil {
		return Unbooked
	}
	if b.Status == model.BookingCanceled {
		return Canceled
	}
	return Confirmed
}

// Transition applies action to current.
func Transition(current State, action Action) (Outcome, error) {
	switch action {
	case ActionBook:
		switch current {
		case Unbooked:
			return Outcome{Next: Confirmed, Effect: EffectInsert, NeedsSeat: true}, nil
		case Canceled:
			return Outcome{Next: Confirmed, Effect: EffectReactivate, NeedsSeat: true}, nil
		case Confirmed:
			return Outcome{}, ErrAlreadyBooked
		}
	case ActionCancel:
		switch current {
		case Unbooked:
			return Outcome{}, ErrNoBooking
		case Confirmed:
			return Outcome{Next: Canceled, Effect: EffectCancel}, nil
		case Canceled:
			return Outcome{Next: Canceled, Effect: EffectNone}, nil
		}
	}
	return Outcome{}, ErrBadTransition
}

// Status converts a confirmed or canceled state into the stored status.
func (s State) Status() model.BookingStatus {
	if s == Canceled {
		return model.BookingCanceled
	}
	return model.BookingConfirmed
}
