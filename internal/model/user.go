package model

import "time"

// Role is the club role carried in the identity token.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleLeader Role = "leader"
	RoleMember Role = "member"
)

// Actor is the authenticated caller as seen by the core services.
// DanceType is only meaningful for leaders.
type Actor struct {
	ID        uint64
	Role      Role
	DanceType string
}

// User represents a row in the `users` table. Only the seed command writes
// users; the API trusts the identity token.
type User struct {
	ID           uint64
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	DanceType    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
