// internal/domain/models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account known to the external identity provider.
//
// ExternalID is the provider's user key and is how every other collection
// refers to a user (see Portfolio.UserID, Template.CreatedBy).
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalID string             `bson:"external_id" json:"external_id" validate:"required"`
	Email      *string            `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Name       *string            `bson:"name,omitempty" json:"name,omitempty" validate:"omitempty,min=2,max=50"`

	Role   string `bson:"role" json:"role" validate:"oneof=admin user"`
	Plan   string `bson:"plan" json:"plan" validate:"oneof=free premium"`
	Status string `bson:"status" json:"status" validate:"oneof=active banned suspended"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// User roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Subscription plans
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Account statuses
const (
	UserStatusActive    = "active"
	UserStatusBanned    = "banned"
	UserStatusSuspended = "suspended"
)

func (User) CollectionName() string { return "users" }

// BeforeCreate assigns identity and timestamps, normalizes the optional
// email and name, and applies the role/plan/status defaults.
func (u *User) BeforeCreate(now time.Time) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.ExternalID = strings.TrimSpace(u.ExternalID)
	if u.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &e
	}
	if u.Name != nil {
		n := strings.TrimSpace(*u.Name)
		u.Name = &n
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Plan == "" {
		u.Plan = PlanFree
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	u.CreatedAt = now
	u.UpdatedAt = now
}
