package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

func seedCourse(t *testing.T, s *MemoryStore, c model.Course) model.Course {
	t.Helper()
	err := s.WithinTx(context.Background(), func(tx Tx) error { return tx.InsertCourse(context.Background(), &c) })
	require.NoError(t, err)
	return c
}

func TestMemoryStoreRollsBackOnError(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx Tx) error {
		c := model.Course{Name: "x", CourseDate: "2024-05-01", Location: "A", TimeSlot: "18:00-19:00", MaxCapacity: 5}
		require.NoError(t, tx.InsertCourse(ctx, &c))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	c := seedCourse(t, s, model.Course{Name: "y", CourseDate: "2024-05-01", Location: "A", TimeSlot: "18:00-19:00", MaxCapacity: 5})
	assert.Equal(t, uint64(1), c.ID, "ids are restored with the snapshot")
}

func TestMemoryStoreDeleteCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	c := seedCourse(t, s, model.Course{Name: "y", CourseDate: "2024-05-01", Location: "A", TimeSlot: "18:00-19:00", MaxCapacity: 5})

	require.NoError(t, s.WithinTx(ctx, func(tx Tx) error {
		return tx.InsertBooking(ctx, &model.Booking{UserID: 4, CourseID: c.ID, Status: model.BookingConfirmed})
	}))
	require.NoError(t, s.WithinTx(ctx, func(tx Tx) error { return tx.DeleteCourse(ctx, c.ID) }))

	b, err := s.FindBooking(ctx, 4, c.ID)
	require.NoError(t, err)
	assert.Nil(t, b)
	mine, err := s.ListConfirmedByUser(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestMemoryStoreRejectsDuplicateBooking(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	c := seedCourse(t, s, model.Course{Name: "y", CourseDate: "2024-05-01", Location: "A", TimeSlot: "18:00-19:00", MaxCapacity: 5})

	insert := func() error {
		return s.WithinTx(ctx, func(tx Tx) error {
			return tx.InsertBooking(ctx, &model.Booking{UserID: 4, CourseID: c.ID, Status: model.BookingConfirmed})
		})
	}
	require.NoError(t, insert())
	assert.ErrorIs(t, insert(), ErrDuplicate)
}

func TestMemoryStoreLockScheduleMatchesLocationLoosely(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedCourse(t, s, model.Course{Name: "a", CourseDate: "2024-05-01", Location: "Studio A", TimeSlot: "18:00-19:00"})
	seedCourse(t, s, model.Course{Name: "b", CourseDate: "2024-05-01", Location: "Studio B", TimeSlot: "18:00-19:00"})

	require.NoError(t, s.WithinTx(ctx, func(tx Tx) error {
		got, err := tx.LockSchedule(ctx, "2024-05-01", "studio a ")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].Name)
		return nil
	}))
}

func TestMemoryStoreCategoryAssignments(t *testing.T) {
	s := NewMemoryStore()
	breaking := "breaking"
	leader := uint64(2)
	seedCourse(t, s, model.Course{Name: "a", DanceType: &breaking, LeaderID: &leader})
	seedCourse(t, s, model.Course{Name: "b", DanceType: &breaking, LeaderID: &leader})
	seedCourse(t, s, model.Course{Name: "c"})

	got, err := s.CategoryAssignments(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "breaking", got[0].DanceType)
	assert.Equal(t, 2, got[0].CourseCount)
	assert.Equal(t, model.PublicDanceType, got[1].DanceType)
	assert.Nil(t, got[1].LeaderID)
}
