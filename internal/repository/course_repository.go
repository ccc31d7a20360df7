package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/danceclub-booking/internal/model"
	"github.com/iliyamo/danceclub-booking/internal/schedule"
)

const courseColumns = `c.id, c.name, c.instructor, c.location, DATE_FORMAT(c.course_date, '%Y-%m-%d'),
       c.time_slot, c.max_capacity, c.description, c.dance_type, c.leader_id, c.created_at, c.updated_at`

const bookedCountColumn = `(SELECT COUNT(*) FROM bookings b WHERE b.course_id = c.id AND b.status = 'confirmed')`

const (
	qListCourses = `SELECT ` + courseColumns + `, ` + bookedCountColumn + `
FROM courses c
ORDER BY c.course_date ASC, c.time_slot ASC, c.id ASC`

	qListCoursesBetween = `SELECT ` + courseColumns + `, ` + bookedCountColumn + `
FROM courses c
WHERE c.course_date BETWEEN ? AND ?
ORDER BY c.course_date ASC, c.time_slot ASC, c.id ASC`

	qGetCourse = `SELECT ` + courseColumns + `, ` + bookedCountColumn + `
FROM courses c
WHERE c.id = ?`

	qLockCourse = `SELECT ` + courseColumns + `
FROM courses c
WHERE c.id = ?
FOR UPDATE`

	qTakeScheduleLock = `INSERT INTO schedule_locks (lock_key) VALUES (?) ON DUPLICATE KEY UPDATE lock_key = lock_key`

	qCoursesAtPlace = `SELECT ` + courseColumns + `
FROM courses c
WHERE c.course_date = ? AND LOWER(TRIM(c.location)) = ?
ORDER BY c.time_slot ASC`

	qInsertCourse = `INSERT INTO courses
(name, instructor, location, course_date, time_slot, max_capacity, description, dance_type, leader_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	qUpdateCourse = `UPDATE courses
SET name = ?, instructor = ?, location = ?, course_date = ?, time_slot = ?, max_capacity = ?,
    description = ?, dance_type = ?, leader_id = ?
WHERE id = ?`

	qDeleteCourseBookings = `DELETE FROM bookings WHERE course_id = ?`
	qDeleteCourse         = `DELETE FROM courses WHERE id = ?`

	qCategoryAssignments = `SELECT COALESCE(NULLIF(c.dance_type, ''), 'public'), c.leader_id, COUNT(*)
FROM courses c
GROUP BY COALESCE(NULLIF(c.dance_type, ''), 'public'), c.leader_id
ORDER BY 1 ASC, 2 ASC`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner, extra ...any) (model.Course, error) {
	var (
		c         model.Course
		danceType sql.NullString
		leaderID  sql.NullInt64
	)
	dest := []any{
		&c.ID, &c.Name, &c.Instructor, &c.Location, &c.CourseDate,
		&c.TimeSlot, &c.MaxCapacity, &c.Description, &danceType, &leaderID, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return model.Course{}, err
	}
	if danceType.Valid {
		v := danceType.String
		c.DanceType = &v
	}
	if leaderID.Valid {
		v := uint64(leaderID.Int64)
		c.LeaderID = &v
	}
	return c, nil
}

func listCoursesWithCount(ctx context.Context, q querier, query string, args ...any) ([]model.CourseWithCount, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CourseWithCount{}
	for rows.Next() {
		var n int
		c, err := scanCourse(rows, &n)
		if err != nil {
			return nil, err
		}
		out = append(out, model.CourseWithCount{Course: c, BookedCount: n})
	}
	return out, rows.Err()
}

func listCourses(ctx context.Context, q querier, query string, args ...any) ([]model.Course, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListCourses returns every course ordered by date and slot.
func (s *MySQLStore) ListCourses(ctx context.Context) ([]model.CourseWithCount, error) {
	return listCoursesWithCount(ctx, s.db, qListCourses)
}

// ListCoursesBetween returns courses dated within [from, to].
func (s *MySQLStore) ListCoursesBetween(ctx context.Context, from, to string) ([]model.CourseWithCount, error) {
	return listCoursesWithCount(ctx, s.db, qListCoursesBetween, from, to)
}

// GetCourse fetches one course with its confirmed count.
func (s *MySQLStore) GetCourse(ctx context.Context, id uint64) (model.CourseWithCount, error) {
	var n int
	c, err := scanCourse(s.db.QueryRowContext(ctx, qGetCourse, id), &n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CourseWithCount{}, ErrNotFound
		}
		return model.CourseWithCount{}, err
	}
	return model.CourseWithCount{Course: c, BookedCount: n}, nil
}

// CategoryAssignments counts courses per category and leader.
func (s *MySQLStore) CategoryAssignments(ctx context.Context) ([]model.CategoryAssignment, error) {
	rows, err := s.db.QueryContext(ctx, qCategoryAssignments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CategoryAssignment{}
	for rows.Next() {
		var (
			a        model.CategoryAssignment
			leaderID sql.NullInt64
		)
		if err := rows.Scan(&a.DanceType, &leaderID, &a.CourseCount); err != nil {
			return nil, err
		}
		if leaderID.Valid {
			v := uint64(leaderID.Int64)
			a.LeaderID = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// LockCourse reads the course row FOR UPDATE.
func (t *mysqlTx) LockCourse(ctx context.Context, id uint64) (model.Course, error) {
	c, err := scanCourse(t.tx.QueryRowContext(ctx, qLockCourse, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Course{}, ErrNotFound
		}
		return model.Course{}, err
	}
	return c, nil
}

// LockSchedule upserts the lock row for (date, location), which holds an
// exclusive row lock until commit, then loads the courses placed there.
func (t *mysqlTx) LockSchedule(ctx context.Context, courseDate, location string) ([]model.Course, error) {
	if _, err := t.tx.ExecContext(ctx, qTakeScheduleLock, ScheduleKey(courseDate, location)); err != nil {
		return nil, err
	}
	return listCourses(ctx, t.tx, qCoursesAtPlace, courseDate, schedule.NormalizeLocation(location))
}

// InsertCourse stores c and fills its ID and timestamps.
func (t *mysqlTx) InsertCourse(ctx context.Context, c *model.Course) error {
	res, err := t.tx.ExecContext(ctx, qInsertCourse,
		c.Name, c.Instructor, c.Location, c.CourseDate, c.TimeSlot, c.MaxCapacity,
		c.Description, nullString(c.DanceType), nullUint(c.LeaderID))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

// UpdateCourse writes every mutable column of c.
func (t *mysqlTx) UpdateCourse(ctx context.Context, c *model.Course) error {
	// MySQL reports zero affected rows when nothing changed, so existence
	// is established by the caller's LockCourse instead of RowsAffected.
	if _, err := t.tx.ExecContext(ctx, qUpdateCourse,
		c.Name, c.Instructor, c.Location, c.CourseDate, c.TimeSlot, c.MaxCapacity,
		c.Description, nullString(c.DanceType), nullUint(c.LeaderID), c.ID); err != nil {
		return err
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteCourse removes the bookings and then the course row.
func (t *mysqlTx) DeleteCourse(ctx context.Context, id uint64) error {
	if _, err := t.tx.ExecContext(ctx, qDeleteCourseBookings, id); err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, qDeleteCourse, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullUint(p *uint64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
