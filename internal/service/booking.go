package service

import (
	"context"

	"github.com/iliyamo/danceclub-booking/internal/booking"
	"github.com/iliyamo/danceclub-booking/internal/model"
	"github.com/iliyamo/danceclub-booking/internal/policy"
	"github.com/iliyamo/danceclub-booking/internal/queue"
	"github.com/iliyamo/danceclub-booking/internal/repository"
)

// BookResult reports the booking row and whether it was newly inserted
// (false when a canceled booking was reactivated).
type BookResult struct {
	Booking model.Booking
	Created bool
}

// CancelResult reports the booking row and whether the call changed it.
type CancelResult struct {
	Booking model.Booking
	Changed bool
}

// BookingService runs member bookings against the capacity guard.
type BookingService struct {
	store  repository.Store
	notify notifier
}

// NewBookingService wires the booking workflow. pub and logger may be nil.
func NewBookingService(store repository.Store, pub Publisher, logger Logger) *BookingService {
	if store == nil {
		panic("nil store passed to NewBookingService")
	}
	return &BookingService{store: store, notify: notifier{pub: pub, logger: logger}}
}

// Book reserves a seat for the actor. The course row stays locked while the
// state machine, the confirmed count and the write run, so concurrent
// bookings of one course are serialized and capacity is never exceeded.
func (s *BookingService) Book(ctx context.Context, actor model.Actor, courseID uint64) (BookResult, error) {
	if err := policy.Decide(actor, policy.OpBook, policy.Resource{OwnerID: actor.ID}); err != nil {
		return BookResult{}, err
	}
	var (
		res    BookResult
		course model.Course
	)
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		c, err := tx.LockCourse(ctx, courseID)
		if err != nil {
			return err
		}
		course = c
		existing, err := tx.LockBooking(ctx, actor.ID, courseID)
		if err != nil {
			return err
		}
		out, err := booking.Transition(booking.StateOf(existing), booking.ActionBook)
		if err != nil {
			return err
		}
		if out.NeedsSeat {
			n, err := tx.CountConfirmed(ctx, courseID)
			if err != nil {
				return err
			}
			if err := booking.Admit(c.MaxCapacity, n); err != nil {
				return err
			}
		}
		switch out.Effect {
		case booking.EffectInsert:
			b := model.Booking{UserID: actor.ID, CourseID: courseID, Status: out.Next.Status()}
			if err := tx.InsertBooking(ctx, &b); err != nil {
				return err
			}
			res = BookResult{Booking: b, Created: true}
		case booking.EffectReactivate:
			if err := tx.SetBookingStatus(ctx, existing, out.Next.Status()); err != nil {
				return err
			}
			res = BookResult{Booking: *existing}
		}
		return nil
	})
	if err != nil {
		return BookResult{}, wrapStore("book course", err)
	}
	s.notify.booking(ctx, queue.KeyBookingConfirmed, res.Booking, course)
	return res, nil
}

// Cancel releases the actor's seat. Canceling an already canceled booking
// succeeds without touching the row.
func (s *BookingService) Cancel(ctx context.Context, actor model.Actor, courseID uint64) (CancelResult, error) {
	if err := policy.Decide(actor, policy.OpCancel, policy.Resource{OwnerID: actor.ID}); err != nil {
		return CancelResult{}, err
	}
	var res CancelResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		existing, err := tx.LockBooking(ctx, actor.ID, courseID)
		if err != nil {
			return err
		}
		out, err := booking.Transition(booking.StateOf(existing), booking.ActionCancel)
		if err != nil {
			return err
		}
		if out.Effect == booking.EffectCancel {
			if err := tx.SetBookingStatus(ctx, existing, out.Next.Status()); err != nil {
				return err
			}
			res.Changed = true
		}
		res.Booking = *existing
		return nil
	})
	if err != nil {
		return CancelResult{}, wrapStore("cancel booking", err)
	}
	if res.Changed {
		if c, err := s.store.GetCourse(ctx, courseID); err == nil {
			s.notify.booking(ctx, queue.KeyBookingCanceled, res.Booking, c.Course)
		}
	}
	return res, nil
}

// Status reports the actor's booking state for a course.
func (s *BookingService) Status(ctx context.Context, actor model.Actor, courseID uint64) (booking.State, error) {
	if err := policy.Decide(actor, policy.OpViewOwnBookings, policy.Resource{OwnerID: actor.ID}); err != nil {
		return "", err
	}
	if _, err := s.store.GetCourse(ctx, courseID); err != nil {
		return "", wrapStore("get course", err)
	}
	b, err := s.store.FindBooking(ctx, actor.ID, courseID)
	if err != nil {
		return "", wrapStore("find booking", err)
	}
	return booking.StateOf(b), nil
}

// MyBookings lists the actor's confirmed bookings.
func (s *BookingService) MyBookings(ctx context.Context, actor model.Actor) ([]model.BookingWithCourse, error) {
	if err := policy.Decide(actor, policy.OpViewOwnBookings, policy.Resource{OwnerID: actor.ID}); err != nil {
		return nil, err
	}
	out, err := s.store.ListConfirmedByUser(ctx, actor.ID)
	return out, wrapStore("list bookings", err)
}
