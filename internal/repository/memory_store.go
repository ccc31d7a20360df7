package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/danceclub-booking/internal/model"
	"github.com/iliyamo/danceclub-booking/internal/schedule"
)

// MemoryStore keeps courses and bookings in process memory. A single mutex
// is held for the whole of WithinTx, so transactions are serialized; the
// state is snapshotted first and restored when fn fails. Callbacks must only
// use the Tx they are given, never the store's read methods.
type MemoryStore struct {
	mu sync.RWMutex

	courses       map[uint64]model.Course
	bookings      map[uint64]model.Booking
	bookingIndex  map[bookingKey]uint64
	usernames     map[uint64]string
	nextCourseID  uint64
	nextBookingID uint64

	now func() time.Time
}

type bookingKey struct {
	userID   uint64
	courseID uint64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		courses:      make(map[uint64]model.Course),
		bookings:     make(map[uint64]model.Booking),
		bookingIndex: make(map[bookingKey]uint64),
		usernames:    make(map[uint64]string),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetUsername registers a display name used in booker listings.
func (s *MemoryStore) SetUsername(userID uint64, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usernames[userID] = username
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

type memorySnapshot struct {
	courses       map[uint64]model.Course
	bookings      map[uint64]model.Booking
	bookingIndex  map[bookingKey]uint64
	nextCourseID  uint64
	nextBookingID uint64
}

func (s *MemoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		courses:       make(map[uint64]model.Course, len(s.courses)),
		bookings:      make(map[uint64]model.Booking, len(s.bookings)),
		bookingIndex:  make(map[bookingKey]uint64, len(s.bookingIndex)),
		nextCourseID:  s.nextCourseID,
		nextBookingID: s.nextBookingID,
	}
	for k, v := range s.courses {
		snap.courses[k] = v
	}
	for k, v := range s.bookings {
		snap.bookings[k] = v
	}
	for k, v := range s.bookingIndex {
		snap.bookingIndex[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.courses = snap.courses
	s.bookings = snap.bookings
	s.bookingIndex = snap.bookingIndex
	s.nextCourseID = snap.nextCourseID
	s.nextBookingID = snap.nextBookingID
}

// WithinTx runs fn with exclusive access to the store.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.restore(snap)
		}
	}()
	if err := fn(&memoryTx{s: s}); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *MemoryStore) confirmedCount(courseID uint64) int {
	n := 0
	for _, b := range s.bookings {
		if b.CourseID == courseID && b.Status == model.BookingConfirmed {
			n++
		}
	}
	return n
}

func (s *MemoryStore) withCount(c model.Course) model.CourseWithCount {
	return model.CourseWithCount{Course: cloneCourse(c), BookedCount: s.confirmedCount(c.ID)}
}

// ListCourses returns every course ordered by date and slot.
func (s *MemoryStore) ListCourses(ctx context.Context) ([]model.CourseWithCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CourseWithCount, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, s.withCount(c))
	}
	schedule.SortCourses(out)
	return out, nil
}

// ListCoursesBetween returns courses dated within [from, to].
func (s *MemoryStore) ListCoursesBetween(ctx context.Context, from, to string) ([]model.CourseWithCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.CourseWithCount{}
	for _, c := range s.courses {
		if c.CourseDate >= from && c.CourseDate <= to {
			out = append(out, s.withCount(c))
		}
	}
	schedule.SortCourses(out)
	return out, nil
}

// GetCourse fetches one course with its confirmed count.
func (s *MemoryStore) GetCourse(ctx context.Context, id uint64) (model.CourseWithCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[id]
	if !ok {
		return model.CourseWithCount{}, ErrNotFound
	}
	return s.withCount(c), nil
}

// ListBookers lists confirmed participants of a course.
func (s *MemoryStore) ListBookers(ctx context.Context, courseID uint64) ([]model.Booker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Booker{}
	for _, b := range s.bookings {
		if b.CourseID == courseID && b.Status == model.BookingConfirmed {
			out = append(out, model.Booker{UserID: b.UserID, Username: s.usernames[b.UserID], BookedAt: b.UpdatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookedAt.Equal(out[j].BookedAt) {
			return out[i].BookedAt.Before(out[j].BookedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// FindBooking returns the member's booking for a course, or nil.
func (s *MemoryStore) FindBooking(ctx context.Context, userID, courseID uint64) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findBooking(userID, courseID), nil
}

func (s *MemoryStore) findBooking(userID, courseID uint64) *model.Booking {
	id, ok := s.bookingIndex[bookingKey{userID, courseID}]
	if !ok {
		return nil
	}
	b := s.bookings[id]
	return &b
}

// ListConfirmedByUser returns the member's confirmed bookings with courses.
func (s *MemoryStore) ListConfirmedByUser(ctx context.Context, userID uint64) ([]model.BookingWithCourse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.BookingWithCourse{}
	for _, b := range s.bookings {
		if b.UserID != userID || b.Status != model.BookingConfirmed {
			continue
		}
		out = append(out, model.BookingWithCourse{Booking: b, Course: cloneCourse(s.courses[b.CourseID])})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Course, out[j].Course
		if a.CourseDate != b.CourseDate {
			return a.CourseDate < b.CourseDate
		}
		return a.TimeSlot < b.TimeSlot
	})
	return out, nil
}

// CategoryAssignments counts courses per category and leader.
func (s *MemoryStore) CategoryAssignments(ctx context.Context) ([]model.CategoryAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type key struct {
		danceType string
		leader    uint64
		hasLeader bool
	}
	counts := map[key]int{}
	for _, c := range s.courses {
		k := key{danceType: c.Category()}
		if k.danceType == "" {
			k.danceType = model.PublicDanceType
		}
		if c.LeaderID != nil {
			k.leader, k.hasLeader = *c.LeaderID, true
		}
		counts[k]++
	}
	out := make([]model.CategoryAssignment, 0, len(counts))
	for k, n := range counts {
		a := model.CategoryAssignment{DanceType: k.danceType, CourseCount: n}
		if k.hasLeader {
			id := k.leader
			a.LeaderID = &id
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DanceType != out[j].DanceType {
			return out[i].DanceType < out[j].DanceType
		}
		return leaderSortKey(out[i].LeaderID) < leaderSortKey(out[j].LeaderID)
	})
	return out, nil
}

func leaderSortKey(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}

// memoryTx is only used while MemoryStore.mu is held.
type memoryTx struct {
	s *MemoryStore
}

func (t *memoryTx) LockCourse(ctx context.Context, id uint64) (model.Course, error) {
	c, ok := t.s.courses[id]
	if !ok {
		return model.Course{}, ErrNotFound
	}
	return cloneCourse(c), nil
}

func (t *memoryTx) LockSchedule(ctx context.Context, courseDate, location string) ([]model.Course, error) {
	var out []model.Course
	for _, c := range t.s.courses {
		if c.CourseDate == courseDate && schedule.SameLocation(c.Location, location) {
			out = append(out, cloneCourse(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeSlot < out[j].TimeSlot })
	return out, nil
}

func (t *memoryTx) InsertCourse(ctx context.Context, c *model.Course) error {
	t.s.nextCourseID++
	c.ID = t.s.nextCourseID
	now := t.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	t.s.courses[c.ID] = cloneCourse(*c)
	return nil
}

func (t *memoryTx) UpdateCourse(ctx context.Context, c *model.Course) error {
	old, ok := t.s.courses[c.ID]
	if !ok {
		return ErrNotFound
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = t.s.now()
	t.s.courses[c.ID] = cloneCourse(*c)
	return nil
}

func (t *memoryTx) DeleteCourse(ctx context.Context, id uint64) error {
	if _, ok := t.s.courses[id]; !ok {
		return ErrNotFound
	}
	for bid, b := range t.s.bookings {
		if b.CourseID == id {
			delete(t.s.bookings, bid)
			delete(t.s.bookingIndex, bookingKey{b.UserID, b.CourseID})
		}
	}
	delete(t.s.courses, id)
	return nil
}

func (t *memoryTx) CountConfirmed(ctx context.Context, courseID uint64) (int, error) {
	return t.s.confirmedCount(courseID), nil
}

func (t *memoryTx) LockBooking(ctx context.Context, userID, courseID uint64) (*model.Booking, error) {
	return t.s.findBooking(userID, courseID), nil
}

func (t *memoryTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	k := bookingKey{b.UserID, b.CourseID}
	if _, ok := t.s.bookingIndex[k]; ok {
		return ErrDuplicate
	}
	if _, ok := t.s.courses[b.CourseID]; !ok {
		return ErrNotFound
	}
	t.s.nextBookingID++
	b.ID = t.s.nextBookingID
	now := t.s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	t.s.bookings[b.ID] = *b
	t.s.bookingIndex[k] = b.ID
	return nil
}

func (t *memoryTx) SetBookingStatus(ctx context.Context, b *model.Booking, status model.BookingStatus) error {
	stored, ok := t.s.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = status
	stored.UpdatedAt = t.s.now()
	t.s.bookings[b.ID] = stored
	*b = stored
	return nil
}

// cloneCourse copies the pointer fields so callers cannot mutate stored rows.
func cloneCourse(c model.Course) model.Course {
	if c.DanceType != nil {
		v := *c.DanceType
		c.DanceType = &v
	}
	if c.LeaderID != nil {
		v := *c.LeaderID
		c.LeaderID = &v
	}
	return c
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Tx    = (*memoryTx)(nil)
)
