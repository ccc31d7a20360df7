package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

const bookingColumns = `b.id, b.user_id, b.course_id, b.status, b.created_at, b.updated_at`

const (
	qFindBooking = `SELECT ` + bookingColumns + `
FROM bookings b
WHERE b.user_id = ? AND b.course_id = ?`

	qLockBooking = qFindBooking + `
FOR UPDATE`

	qCountConfirmed = `SELECT COUNT(*) FROM bookings WHERE course_id = ? AND status = 'confirmed'`

	qInsertBooking = `INSERT INTO bookings (user_id, course_id, status) VALUES (?, ?, ?)`

	qSetBookingStatus = `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`

	qListBookers = `SELECT b.user_id, COALESCE(u.username, ''), b.updated_at
FROM bookings b
LEFT JOIN users u ON u.id = b.user_id
WHERE b.course_id = ? AND b.status = 'confirmed'
ORDER BY b.updated_at ASC, b.id ASC`

	qListConfirmedByUser = `SELECT ` + courseColumns + `, ` + bookingColumns + `
FROM bookings b
JOIN courses c ON c.id = b.course_id
WHERE b.user_id = ? AND b.status = 'confirmed'
ORDER BY c.course_date ASC, c.time_slot ASC`
)

func scanBooking(row rowScanner) (*model.Booking, error) {
	var (
		b      model.Booking
		status string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.CourseID, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	return &b, nil
}

// FindBooking returns the member's booking for a course, or nil.
func (s *MySQLStore) FindBooking(ctx context.Context, userID, courseID uint64) (*model.Booking, error) {
	return scanBooking(s.db.QueryRowContext(ctx, qFindBooking, userID, courseID))
}

// ListBookers lists confirmed participants of a course.
func (s *MySQLStore) ListBookers(ctx context.Context, courseID uint64) ([]model.Booker, error) {
	rows, err := s.db.QueryContext(ctx, qListBookers, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booker{}
	for rows.Next() {
		var bk model.Booker
		if err := rows.Scan(&bk.UserID, &bk.Username, &bk.BookedAt); err != nil {
			return nil, err
		}
		out = append(out, bk)
	}
	return out, rows.Err()
}

// ListConfirmedByUser returns the member's confirmed bookings with courses.
func (s *MySQLStore) ListConfirmedByUser(ctx context.Context, userID uint64) ([]model.BookingWithCourse, error) {
	rows, err := s.db.QueryContext(ctx, qListConfirmedByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BookingWithCourse{}
	for rows.Next() {
		var (
			bw     model.BookingWithCourse
			status string
		)
		c, err := scanCourse(rows, &bw.ID, &bw.UserID, &bw.CourseID, &status, &bw.CreatedAt, &bw.UpdatedAt)
		if err != nil {
			return nil, err
		}
		bw.Status = model.BookingStatus(status)
		bw.Course = c
		out = append(out, bw)
	}
	return out, rows.Err()
}

// CountConfirmed counts confirmed bookings of a course.
func (t *mysqlTx) CountConfirmed(ctx context.Context, courseID uint64) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, qCountConfirmed, courseID).Scan(&n)
	return n, err
}

// LockBooking reads the member's booking row FOR UPDATE.
func (t *mysqlTx) LockBooking(ctx context.Context, userID, courseID uint64) (*model.Booking, error) {
	return scanBooking(t.tx.QueryRowContext(ctx, qLockBooking, userID, courseID))
}

// InsertBooking stores b and fills its ID and timestamps.
func (t *mysqlTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	res, err := t.tx.ExecContext(ctx, qInsertBooking, b.UserID, b.CourseID, string(b.Status))
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

// SetBookingStatus moves an existing row to status in place.
func (t *mysqlTx) SetBookingStatus(ctx context.Context, b *model.Booking, status model.BookingStatus) error {
	now := time.Now().UTC()
	if _, err := t.tx.ExecContext(ctx, qSetBookingStatus, string(status), now, b.ID); err != nil {
		return err
	}
	b.Status = status
	b.UpdatedAt = now
	return nil
}
