package models

import (
	"time"

	"gorm.io/gorm"
)

// DiningTable represents a physical table in the restaurant. Tables are
// created by admin tooling; the session core references them read-only.
type DiningTable struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Number    string         `gorm:"uniqueIndex;not null" json:"number"` // human-readable, e.g. "T1"
	Location  string         `json:"location"`
	Capacity  int            `gorm:"not null;default:4;check:capacity > 0" json:"capacity"`
	Status    string         `gorm:"not null;default:'active'" json:"status"` // active, inactive
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the DiningTable model
func (DiningTable) TableName() string {
	return "tables"
}
