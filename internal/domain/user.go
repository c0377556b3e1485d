package domain

import (
	"github.com/google/uuid"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

// HasRole reports whether the caller's role is one of roles.
func (c Caller) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// CanMutate is the ownership rule for job mutations: admins may change any
// job, everyone else only the jobs they own.
func CanMutate(caller Caller, job *Job) bool {
	if job == nil {
		return false
	}
	return caller.Role == RoleAdmin || (caller.ID != uuid.Nil && caller.ID == job.OwnerID)
}
