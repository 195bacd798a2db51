package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system (customer or staff member).
// User records are maintained by the auth/staff admin surface; the session
// core only reads them to resolve the acting customer or staff member.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"not null;default:'customer'" json:"role"` // customer, waiter, kitchen, admin
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsStaff reports whether the user may act on orders as waiter/kitchen staff
func (u *User) IsStaff() bool {
	return u.Role == "waiter" || u.Role == "kitchen" || u.Role == "admin"
}
