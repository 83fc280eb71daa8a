package model

import (
	"time"

	"edu-subscription-platform/internal/domain"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// SubscriptionState is embedded in the user record and only ever written by
// payment reconciliation.
type SubscriptionState struct {
	Type    *BillingCycle `json:"subscription_type"`
	Expires *time.Time    `json:"subscription_expires"`
}

// User is the account view this service needs: identity, cohort and entitlement.
type User struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	FullName     string            `json:"full_name"`
	Role         Role              `json:"role"`
	AgeGroup     *AgeTier          `json:"age_group,omitempty"`
	Subscription SubscriptionState `json:"subscription"`
	CreatedAt    time.Time         `json:"created_at"`
	IsActive     bool              `json:"is_active"`
}

func NewUser(id, email, fullName string, role Role) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if email == "" || fullName == "" {
		return nil, domain.ErrInvalidArgument
	}
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
	default:
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:        id,
		Email:     email,
		FullName:  fullName,
		Role:      role,
		CreatedAt: time.Now(),
		IsActive:  true,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
