package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

var courseCols = []string{
	"id", "name", "instructor", "location", "course_date", "time_slot", "max_capacity",
	"description", "dance_type", "leader_id", "created_at", "updated_at",
}

func newMock(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQLStore(db), mock
}

func TestLockCourseScansNullableColumns(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(qLockCourse).WithArgs(7).WillReturnRows(
		sqlmock.NewRows(courseCols).
			AddRow(7, "Hip Hop Basics", "Kim", "Studio A", "2024-05-01", "18:00-19:30", 12,
				"", nil, int64(3), now, now))
	mock.ExpectCommit()

	var got model.Course
	err := store.WithinTx(ctx, func(tx Tx) error {
		var err error
		got, err = tx.LockCourse(ctx, 7)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.ID)
	assert.Equal(t, "2024-05-01", got.CourseDate)
	assert.Nil(t, got.DanceType)
	require.NotNil(t, got.LeaderID)
	assert.Equal(t, uint64(3), *got.LeaderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockCourseNotFound(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(qLockCourse).WithArgs(9).WillReturnRows(sqlmock.NewRows(courseCols))
	mock.ExpectRollback()

	err := store.WithinTx(ctx, func(tx Tx) error {
		_, err := tx.LockCourse(ctx, 9)
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockScheduleTakesLockRowAndRollsBack(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(qTakeScheduleLock).WithArgs("2024-05-01|studio a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(qCoursesAtPlace).WithArgs("2024-05-01", "studio a").
		WillReturnRows(sqlmock.NewRows(courseCols))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx Tx) error {
		courses, err := tx.LockSchedule(ctx, "2024-05-01", " Studio A ")
		require.NoError(t, err)
		assert.Empty(t, courses)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBookingMapsDuplicateKey(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(qInsertBooking).WithArgs(4, 7, "confirmed").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := store.WithinTx(ctx, func(tx Tx) error {
		return tx.InsertBooking(ctx, &model.Booking{UserID: 4, CourseID: 7, Status: model.BookingConfirmed})
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCourseCascades(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(qDeleteCourseBookings).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(qDeleteCourse).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(ctx, func(tx Tx) error { return tx.DeleteCourse(ctx, 7) })
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBookingMissingReturnsNil(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(qFindBooking).WithArgs(4, 7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "course_id", "status", "created_at", "updated_at"}))

	b, err := store.FindBooking(context.Background(), 4, 7)
	assert.NoError(t, err)
	assert.Nil(t, b)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCourseWithCount(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(qGetCourse).WithArgs(7).WillReturnRows(
		sqlmock.NewRows(append(courseCols, "booked_count")).
			AddRow(7, "Popping", "Lee", "Hall", "2024-05-02", "19:00-20:00", 10, "d", "popping", nil, now, now, 4))

	c, err := store.GetCourse(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 4, c.BookedCount)
	assert.Equal(t, "popping", c.Category())
	assert.NoError(t, mock.ExpectationsWereMet())
}
