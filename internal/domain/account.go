// Package domain holds the entities of the hosting backend: accounts,
// repositories, issues, pull requests, their comments, reactions, forks and
// stars. Entities are plain values; identity is expressed purely through key
// fields and relationships are checked at write time by the persistence layer.
package domain

import "time"

// User is an individual account. Usernames share a namespace with
// organization names.
type User struct {
	Username      string    `json:"username" validate:"required,slug,max=39"`
	Email         string    `json:"email" validate:"omitempty,email"`
	Bio           string    `json:"bio,omitempty" validate:"max=256"`
	PaymentPlanID string    `json:"payment_plan_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserUpdate carries the fields to change on a user. Nil fields are left as
// they are.
type UserUpdate struct {
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio           *string `json:"bio,omitempty" validate:"omitempty,max=256"`
	PaymentPlanID *string `json:"payment_plan_id,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.Bio == nil && u.PaymentPlanID == nil
}

// Organization is an account that owns repositories on behalf of a team.
type Organization struct {
	OrgName       string    `json:"org_name" validate:"required,slug,max=39"`
	Description   string    `json:"description,omitempty" validate:"max=1024"`
	PaymentPlanID string    `json:"payment_plan_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrganizationUpdate carries the fields to change on an organization.
type OrganizationUpdate struct {
	Description   *string `json:"description,omitempty" validate:"omitempty,max=1024"`
	PaymentPlanID *string `json:"payment_plan_id,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u OrganizationUpdate) Empty() bool {
	return u.Description == nil && u.PaymentPlanID == nil
}
