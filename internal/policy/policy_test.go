package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

var (
	admin      = model.Actor{ID: 1, Role: model.RoleAdmin}
	breaking   = model.Actor{ID: 2, Role: model.RoleLeader, DanceType: "breaking"}
	unassigned = model.Actor{ID: 3, Role: model.RoleLeader}
	member     = model.Actor{ID: 4, Role: model.RoleMember}
)

func ptr(v uint64) *uint64 { return &v }

func TestRoleTable(t *testing.T) {
	cases := []struct {
		actor model.Actor
		op    Operation
		want  Scope
	}{
		{admin, OpCreateCourse, ScopeAny},
		{admin, OpAssignCourse, ScopeAny},
		{admin, OpBook, ScopeNone},
		{breaking, OpUpdateCourse, ScopeOwned},
		{breaking, OpAssignCourse, ScopeNone},
		{breaking, OpViewAssignments, ScopeNone},
		{breaking, OpBook, ScopeNone},
		{member, OpBook, ScopeOwned},
		{member, OpCreateCourse, ScopeNone},
		{member, OpListCourses, ScopeAny},
		{model.Actor{Role: "guest"}, OpListCourses, ScopeNone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ScopeFor(tc.actor.Role, tc.op), "%s %s", tc.actor.Role, tc.op)
	}
}

func TestDecideCourseOwnership(t *testing.T) {
	breakingCourse := Resource{DanceType: "Breaking"}
	poppingCourse := Resource{DanceType: "popping"}
	led := Resource{LeaderID: ptr(3)}

	assert.NoError(t, Decide(admin, OpDeleteCourse, poppingCourse))
	assert.NoError(t, Decide(breaking, OpUpdateCourse, breakingCourse))
	assert.ErrorIs(t, Decide(breaking, OpUpdateCourse, poppingCourse), ErrForbidden)
	assert.NoError(t, Decide(unassigned, OpDeleteCourse, led))
	assert.ErrorIs(t, Decide(unassigned, OpDeleteCourse, Resource{}), ErrForbidden)
	assert.ErrorIs(t, Decide(member, OpCreateCourse, breakingCourse), ErrForbidden)
	assert.ErrorIs(t, Decide(breaking, OpAssignCourse, breakingCourse), ErrForbidden)
}

func TestDecideBooking(t *testing.T) {
	assert.NoError(t, Decide(member, OpBook, Resource{OwnerID: member.ID}))
	assert.ErrorIs(t, Decide(member, OpCancel, Resource{OwnerID: 99}), ErrForbidden)
	assert.ErrorIs(t, Decide(admin, OpBook, Resource{OwnerID: admin.ID}), ErrRoleIneligible)
	assert.ErrorIs(t, Decide(breaking, OpCancel, Resource{OwnerID: breaking.ID}), ErrRoleIneligible)
}

func TestCourseResourceTreatsPublicAsUncategorized(t *testing.T) {
	pub := model.PublicDanceType
	res := CourseResource(model.Course{DanceType: &pub})
	assert.Equal(t, "", res.DanceType)
	assert.ErrorIs(t, Decide(model.Actor{ID: 7, Role: model.RoleLeader, DanceType: ""}, OpUpdateCourse, res), ErrForbidden)
}
