package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleEmployer  Role = "EMPLOYER"
	RoleJobSeeker Role = "JOB_SEEKER"
	// RoleSystem marks actions taken by the platform itself (screening, cascade sweeps).
	RoleSystem Role = "SYSTEM"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployer, RoleJobSeeker:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

type User struct {
	ID         uuid.UUID
	Email      string
	FullName   string
	Role       Role
	Status     Status
	IndustryID *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

func (a Actor) IsAdmin() bool    { return a.Role == RoleAdmin }
func (a Actor) IsEmployer() bool { return a.Role == RoleEmployer }
func (a Actor) IsSystem() bool   { return a.Role == RoleSystem }

// AuditID is the actor id as recorded in the audit log; nil for the system.
func (a Actor) AuditID() *uuid.UUID {
	if a.IsSystem() || a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}
