package models

import (
	"time"

	"gorm.io/gorm"
)

// MenuItem represents a dish on the menu. Menu CRUD lives in the admin
// surface; the session core only reads items to snapshot price and name
// into order lines at order time.
type MenuItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	Price          float64         `gorm:"type:decimal(12,2);not null;check:price >= 0" json:"price"`
	IsAvailable    bool            `gorm:"not null;default:true" json:"is_available"`
	ModifierGroups []ModifierGroup `gorm:"many2many:menu_item_modifier_groups" json:"modifier_groups,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the MenuItem model
func (MenuItem) TableName() string {
	return "menu_items"
}

// ModifierGroup represents a customization axis (e.g. "Size", "Toppings").
// Groups are shared across menu items through menu_item_modifier_groups.
type ModifierGroup struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Name      string           `gorm:"not null" json:"name"`
	Options   []ModifierOption `gorm:"foreignKey:ModifierGroupID" json:"options,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ModifierGroup model
func (ModifierGroup) TableName() string {
	return "modifier_groups"
}

// ModifierOption represents one selectable choice within a modifier group,
// carrying the price adjustment charged per unit of the order line.
type ModifierOption struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ModifierGroupID uint           `gorm:"not null;index" json:"modifier_group_id"`
	Name            string         `gorm:"not null" json:"name"`
	PriceAdjustment float64        `gorm:"type:decimal(12,2);not null;default:0" json:"price_adjustment"`
	IsAvailable     bool           `gorm:"not null;default:true" json:"is_available"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ModifierOption model
func (ModifierOption) TableName() string {
	return "modifier_options"
}
