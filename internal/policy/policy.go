// Package policy decides which club role may perform which course and
// booking operation. Every rule lives in one table so it can be read and
// tested in a single place.
package policy

import (
	"errors"
	"strings"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

// Operation names an action guarded by the policy.
type Operation string

const (
	OpListCourses     Operation = "course.list"
	OpViewCourse      Operation = "course.view"
	OpListManaged     Operation = "course.list_managed"
	OpCreateCourse    Operation = "course.create"
	OpUpdateCourse    Operation = "course.update"
	OpDeleteCourse    Operation = "course.delete"
	OpAssignCourse    Operation = "course.assign"
	OpViewAssignments Operation = "course.assignments"
	OpBook            Operation = "booking.book"
	OpCancel          Operation = "booking.cancel"
	OpViewOwnBookings Operation = "booking.list_own"
)

// Scope is how far a grant reaches.
type Scope int

const (
	// ScopeNone denies the operation.
	ScopeNone Scope = iota
	// ScopeOwned allows it on resources the actor owns.
	ScopeOwned
	// ScopeAny allows it on every resource.
	ScopeAny
)

var (
	// ErrForbidden is returned when the role or ownership rule denies access.
	ErrForbidden = errors.New("forbidden")
	// ErrRoleIneligible is returned when the caller's role can never perform
	// a booking operation (for example an admin trying to book).
	ErrRoleIneligible = errors.New("role not eligible for this operation")
)

var table = map[model.Role]map[Operation]Scope{
	model.RoleAdmin: {
		OpListCourses:     ScopeAny,
		OpViewCourse:      ScopeAny,
		OpListManaged:     ScopeAny,
		OpCreateCourse:    ScopeAny,
		OpUpdateCourse:    ScopeAny,
		OpDeleteCourse:    ScopeAny,
		OpAssignCourse:    ScopeAny,
		OpViewAssignments: ScopeAny,
		OpViewOwnBookings: ScopeOwned,
	},
	model.RoleLeader: {
		OpListCourses:     ScopeAny,
		OpViewCourse:      ScopeAny,
		OpListManaged:     ScopeOwned,
		OpCreateCourse:    ScopeOwned,
		OpUpdateCourse:    ScopeOwned,
		OpDeleteCourse:    ScopeOwned,
		OpViewOwnBookings: ScopeOwned,
	},
	model.RoleMember: {
		OpListCourses:     ScopeAny,
		OpViewCourse:      ScopeAny,
		OpBook:            ScopeOwned,
		OpCancel:          ScopeOwned,
		OpViewOwnBookings: ScopeOwned,
	},
}

// Resource carries the ownership attributes of the target. Course
// operations use DanceType and LeaderID; booking operations use OwnerID.
type Resource struct {
	DanceType string
	LeaderID  *uint64
	OwnerID   uint64
}

// CourseResource builds the resource view of a course.
func CourseResource(c model.Course) Resource {
	return Resource{DanceType: c.Category(), LeaderID: c.LeaderID}
}

// ScopeFor returns the grant for role and op. Unknown roles get ScopeNone.
func ScopeFor(role model.Role, op Operation) Scope {
	return table[role][op]
}

// Allow checks the role grant only. It is used by list operations that
// filter by ownership afterwards.
func Allow(actor model.Actor, op Operation) (Scope, error) {
	s := ScopeFor(actor.Role, op)
	if s == ScopeNone {
		return s, denial(op)
	}
	return s, nil
}

// Decide checks the role grant and, for ScopeOwned, ownership of res.
func Decide(actor model.Actor, op Operation, res Resource) error {
	s, err := Allow(actor, op)
	if err != nil {
		return err
	}
	if s == ScopeOwned && !Owns(actor, op, res) {
		return ErrForbidden
	}
	return nil
}

// Owns reports whether actor owns res for op.
func Owns(actor model.Actor, op Operation, res Resource) bool {
	switch op {
	case OpBook, OpCancel, OpViewOwnBookings:
		return res.OwnerID == actor.ID
	}
	cat := strings.TrimSpace(actor.DanceType)
	if cat != "" && strings.EqualFold(cat, res.DanceType) {
		return true
	}
	return res.LeaderID != nil && *res.LeaderID == actor.ID
}

func denial(op Operation) error {
	if op == OpBook || op == OpCancel {
		return ErrRoleIneligible
	}
	return ErrForbidden
}
