package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleRepresentative Role = "representative"
	RoleSupervisor     Role = "supervisor"
	RoleManager        Role = "manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleRepresentative, RoleSupervisor, RoleManager:
		return true
	}
	return false
}

func (r Role) IsRepresentative() bool {
	return r == RoleRepresentative
}

// IsReviewer reports whether r may approve or reject weekly plans and read
// every representative's data.
func (r Role) IsReviewer() bool {
	return r == RoleSupervisor || r == RoleManager
}

// User represents a user in the system (a field representative or one of their reviewers).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Actor is the authenticated caller of an operation: who they are and in which role they act.
type Actor struct {
	UserID primitive.ObjectID
	Role   Role
}

// Owns reports whether the actor is the representative identified by repID.
func (a Actor) Owns(repID primitive.ObjectID) bool {
	return a.Role == RoleRepresentative && a.UserID == repID
}
