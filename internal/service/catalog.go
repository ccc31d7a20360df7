package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/danceclub-booking/internal/booking"
	"github.com/iliyamo/danceclub-booking/internal/model"
	"github.com/iliyamo/danceclub-booking/internal/policy"
	"github.com/iliyamo/danceclub-booking/internal/queue"
	"github.com/iliyamo/danceclub-booking/internal/repository"
	"github.com/iliyamo/danceclub-booking/internal/schedule"
)

// CourseInput is a new course as submitted by an admin or leader.
type CourseInput struct {
	Name        string
	Instructor  string
	Location    string
	CourseDate  string
	TimeSlot    string
	MaxCapacity *int
	Description string
	DanceType   *string
	LeaderID    *uint64
}

// CoursePatch changes only the non-nil fields. An empty DanceType (or
// "public") clears the category; a zero LeaderID clears the leader.
type CoursePatch struct {
	Name        *string
	Instructor  *string
	Location    *string
	CourseDate  *string
	TimeSlot    *string
	MaxCapacity *int
	Description *string
	DanceType   *string
	LeaderID    *uint64
}

// CourseDetail is a course with its confirmed participants.
type CourseDetail struct {
	model.CourseWithCount
	BookedBy []model.Booker `json:"booked_by"`
}

// WeekSchedule is the Monday..Sunday view around a date.
type WeekSchedule struct {
	WeekStart string         `json:"week_start"`
	WeekEnd   string         `json:"week_end"`
	Days      []schedule.Day `json:"days"`
}

// CatalogService manages course offerings.
type CatalogService struct {
	store  repository.Store
	notify notifier
}

// NewCatalogService wires the catalog. pub and logger may be nil.
func NewCatalogService(store repository.Store, pub Publisher, logger Logger) *CatalogService {
	if store == nil {
		panic("nil store passed to NewCatalogService")
	}
	return &CatalogService{store: store, notify: notifier{pub: pub, logger: logger}}
}

// Create validates the draft, checks the (date, location) schedule under
// its lock and inserts the course. Leaders always create in their own
// category with themselves as leader.
func (s *CatalogService) Create(ctx context.Context, actor model.Actor, in CourseInput) (model.Course, error) {
	if _, err := policy.Allow(actor, policy.OpCreateCourse); err != nil {
		return model.Course{}, err
	}
	if actor.Role == model.RoleLeader {
		in.DanceType = categoryPtr(actor.DanceType)
		id := actor.ID
		in.LeaderID = &id
	}
	c, slot, err := buildCourse(in)
	if err != nil {
		return model.Course{}, err
	}
	if err := policy.Decide(actor, policy.OpCreateCourse, policy.CourseResource(c)); err != nil {
		return model.Course{}, err
	}

	err = s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if err := checkPlacement(ctx, tx, c, slot); err != nil {
			return err
		}
		return tx.InsertCourse(ctx, &c)
	})
	if err != nil {
		return model.Course{}, wrapStore("create course", err)
	}
	s.notify.course(ctx, queue.KeyCourseCreated, c, actor.ID)
	return c, nil
}

// Update applies patch to a course the actor may manage. A changed date,
// location or slot is re-checked for conflicts, excluding the course itself.
func (s *CatalogService) Update(ctx context.Context, actor model.Actor, id uint64, p CoursePatch) (model.Course, error) {
	if _, err := policy.Allow(actor, policy.OpUpdateCourse); err != nil {
		return model.Course{}, err
	}
	var updated model.Course
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		cur, err := tx.LockCourse(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.Decide(actor, policy.OpUpdateCourse, policy.CourseResource(cur)); err != nil {
			return err
		}
		next, slot, err := applyPatch(cur, p)
		if err != nil {
			return err
		}
		if actor.Role != model.RoleAdmin && !sameAssignment(cur, next) {
			return policy.ErrForbidden
		}
		if placementChanged(cur, next) {
			if err := checkPlacement(ctx, tx, next, slot); err != nil {
				return err
			}
		}
		if next.MaxCapacity < cur.MaxCapacity {
			n, err := tx.CountConfirmed(ctx, id)
			if err != nil {
				return err
			}
			if next.MaxCapacity < n {
				return invalid("max_capacity", errBelowBooked)
			}
		}
		if err := tx.UpdateCourse(ctx, &next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return model.Course{}, wrapStore("update course", err)
	}
	s.notify.course(ctx, queue.KeyCourseUpdated, updated, actor.ID)
	return updated, nil
}

// Delete removes a course the actor may manage, together with its bookings.
func (s *CatalogService) Delete(ctx context.Context, actor model.Actor, id uint64) error {
	if _, err := policy.Allow(actor, policy.OpDeleteCourse); err != nil {
		return err
	}
	var deleted model.Course
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		cur, err := tx.LockCourse(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.Decide(actor, policy.OpDeleteCourse, policy.CourseResource(cur)); err != nil {
			return err
		}
		deleted = cur
		return tx.DeleteCourse(ctx, id)
	})
	if err != nil {
		return wrapStore("delete course", err)
	}
	s.notify.course(ctx, queue.KeyCourseDeleted, deleted, actor.ID)
	return nil
}

// Assign sets the category and leader of a course. Admin only.
func (s *CatalogService) Assign(ctx context.Context, actor model.Actor, id uint64, danceType *string, leaderID *uint64) (model.Course, error) {
	if danceType == nil && leaderID == nil {
		return model.Course{}, invalid("dance_type", errNothingToAssign)
	}
	if _, err := policy.Allow(actor, policy.OpAssignCourse); err != nil {
		return model.Course{}, err
	}
	p := CoursePatch{DanceType: danceType, LeaderID: leaderID}
	var updated model.Course
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		cur, err := tx.LockCourse(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.Decide(actor, policy.OpAssignCourse, policy.CourseResource(cur)); err != nil {
			return err
		}
		next, _, err := applyPatch(cur, p)
		if err != nil {
			return err
		}
		if err := tx.UpdateCourse(ctx, &next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return model.Course{}, wrapStore("assign course", err)
	}
	s.notify.course(ctx, queue.KeyCourseUpdated, updated, actor.ID)
	return updated, nil
}

// List returns every course with its confirmed count.
func (s *CatalogService) List(ctx context.Context) ([]model.CourseWithCount, error) {
	out, err := s.store.ListCourses(ctx)
	return out, wrapStore("list courses", err)
}

// Get returns one course with its confirmed participants.
func (s *CatalogService) Get(ctx context.Context, id uint64) (CourseDetail, error) {
	c, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return CourseDetail{}, wrapStore("get course", err)
	}
	bookers, err := s.store.ListBookers(ctx, id)
	if err != nil {
		return CourseDetail{}, wrapStore("list bookers", err)
	}
	return CourseDetail{CourseWithCount: c, BookedBy: bookers}, nil
}

// Week returns the courses of the Monday..Sunday window containing date,
// grouped by day and ordered by slot.
func (s *CatalogService) Week(ctx context.Context, date string) (WeekSchedule, error) {
	d, err := schedule.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return WeekSchedule{}, invalid("date", err)
	}
	start, end := schedule.WeekOf(d)
	from, to := start.Format(schedule.DateLayout), end.Format(schedule.DateLayout)
	courses, err := s.store.ListCoursesBetween(ctx, from, to)
	if err != nil {
		return WeekSchedule{}, wrapStore("list week", err)
	}
	return WeekSchedule{WeekStart: from, WeekEnd: to, Days: schedule.GroupWeek(start, courses)}, nil
}

// Managed lists the courses the actor may edit.
func (s *CatalogService) Managed(ctx context.Context, actor model.Actor) ([]model.CourseWithCount, error) {
	scope, err := policy.Allow(actor, policy.OpListManaged)
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, wrapStore("list courses", err)
	}
	if scope == policy.ScopeAny {
		return all, nil
	}
	out := []model.CourseWithCount{}
	for _, c := range all {
		if policy.Owns(actor, policy.OpListManaged, policy.CourseResource(c.Course)) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Assignments summarizes course counts per category and leader. Admin only.
func (s *CatalogService) Assignments(ctx context.Context, actor model.Actor) ([]model.CategoryAssignment, error) {
	if _, err := policy.Allow(actor, policy.OpViewAssignments); err != nil {
		return nil, err
	}
	out, err := s.store.CategoryAssignments(ctx)
	return out, wrapStore("category assignments", err)
}

// checkPlacement takes the schedule lock for the course's date and location
// and fails with ScheduleConflictError when another course overlaps.
func checkPlacement(ctx context.Context, tx repository.Tx, c model.Course, slot schedule.Slot) error {
	existing, err := tx.LockSchedule(ctx, c.CourseDate, c.Location)
	if err != nil {
		return err
	}
	cand := schedule.Candidate{CourseDate: c.CourseDate, Location: c.Location, Slot: slot, ExcludeID: c.ID}
	if conflicts := schedule.DetectConflicts(cand, existing); len(conflicts) > 0 {
		return &ScheduleConflictError{Conflicts: conflicts}
	}
	return nil
}

func buildCourse(in CourseInput) (model.Course, schedule.Slot, error) {
	c := model.Course{
		Name:        strings.TrimSpace(in.Name),
		Instructor:  strings.TrimSpace(in.Instructor),
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		MaxCapacity: model.DefaultMaxCapacity,
		DanceType:   normalizeCategory(in.DanceType),
		LeaderID:    normalizeLeader(in.LeaderID),
	}
	for _, f := range []struct{ name, value string }{
		{"name", c.Name},
		{"instructor", c.Instructor},
		{"location", c.Location},
		{"course_date", in.CourseDate},
		{"time_slot", in.TimeSlot},
	} {
		if strings.TrimSpace(f.value) == "" {
			return model.Course{}, schedule.Slot{}, invalid(f.name, errRequired)
		}
	}
	if in.MaxCapacity != nil {
		c.MaxCapacity = *in.MaxCapacity
	}
	if c.MaxCapacity < 1 {
		return model.Course{}, schedule.Slot{}, invalid("max_capacity", errNonPositive)
	}
	date, err := schedule.CanonicalDate(strings.TrimSpace(in.CourseDate))
	if err != nil {
		return model.Course{}, schedule.Slot{}, invalid("course_date", err)
	}
	c.CourseDate = date
	slot, err := schedule.ParseSlot(in.TimeSlot)
	if err != nil {
		return model.Course{}, schedule.Slot{}, invalid("time_slot", err)
	}
	c.TimeSlot = slot.String()
	return c, slot, nil
}

func applyPatch(cur model.Course, p CoursePatch) (model.Course, schedule.Slot, error) {
	in := CourseInput{
		Name:        pick(p.Name, cur.Name),
		Instructor:  pick(p.Instructor, cur.Instructor),
		Location:    pick(p.Location, cur.Location),
		CourseDate:  pick(p.CourseDate, cur.CourseDate),
		TimeSlot:    pick(p.TimeSlot, cur.TimeSlot),
		Description: pick(p.Description, cur.Description),
		MaxCapacity: &cur.MaxCapacity,
		DanceType:   cur.DanceType,
		LeaderID:    cur.LeaderID,
	}
	if p.MaxCapacity != nil {
		in.MaxCapacity = p.MaxCapacity
	}
	if p.DanceType != nil {
		in.DanceType = p.DanceType
	}
	if p.LeaderID != nil {
		in.LeaderID = p.LeaderID
	}
	next, slot, err := buildCourse(in)
	if err != nil {
		return model.Course{}, schedule.Slot{}, err
	}
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = cur.UpdatedAt
	return next, slot, nil
}

func pick(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

func placementChanged(a, b model.Course) bool {
	return a.CourseDate != b.CourseDate || a.TimeSlot != b.TimeSlot || !schedule.SameLocation(a.Location, b.Location)
}

func sameAssignment(a, b model.Course) bool {
	if !strings.EqualFold(a.Category(), b.Category()) {
		return false
	}
	switch {
	case a.LeaderID == nil && b.LeaderID == nil:
		return true
	case a.LeaderID == nil || b.LeaderID == nil:
		return false
	}
	return *a.LeaderID == *b.LeaderID
}

func normalizeCategory(p *string) *string {
	if p == nil {
		return nil
	}
	return categoryPtr(*p)
}

func categoryPtr(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, model.PublicDanceType) {
		return nil
	}
	return &v
}

func normalizeLeader(p *uint64) *uint64 {
	if p == nil || *p == 0 {
		return nil
	}
	v := *p
	return &v
}

// wrapStore annotates infrastructure errors and passes domain errors through.
func wrapStore(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isDomainError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrScheduleConflict) ||
		errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, policy.ErrForbidden) ||
		errors.Is(err, policy.ErrRoleIneligible) ||
		errors.Is(err, booking.ErrAlreadyBooked) ||
		errors.Is(err, booking.ErrCourseFull) ||
		errors.Is(err, booking.ErrNoBooking)
}
