package models

import (
	"time"

	"gorm.io/gorm"
)

// Order status values
const (
	OrderStatusPending   = "pending"
	OrderStatusAccepted  = "accepted"
	OrderStatusRejected  = "rejected"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusCompleted = "completed"
)

// OrderItem status values
const (
	ItemStatusPending   = "pending"
	ItemStatusConfirmed = "confirmed"
	ItemStatusPreparing = "preparing"
	ItemStatusReady     = "ready"
	ItemStatusServed    = "served"
	ItemStatusCancelled = "cancelled"
)

// Order represents one ordering event within a session. Pricing fields are
// computed from the line snapshots at creation time and never re-read from
// the live menu.
type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderNumber string    `gorm:"uniqueIndex;not null" json:"order_number"`
	SessionID   *uint     `gorm:"index" json:"session_id"`
	Session     *Session  `gorm:"foreignKey:SessionID" json:"-"`
	TableID     uint      `gorm:"not null;index" json:"table_id"`
	CustomerID  *uint     `gorm:"index" json:"customer_id"`
	WaiterID    *uint     `gorm:"index" json:"waiter_id"` // staff member who accepted/rejected
	Status      string    `gorm:"not null;default:'pending'" json:"status"` // pending, accepted, rejected, preparing, ready, served, completed
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`

	Subtotal float64 `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	Tax      float64 `gorm:"type:decimal(12,2);not null;default:0" json:"tax"`
	Discount float64 `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total    float64 `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	RejectionReason *string    `json:"rejection_reason,omitempty"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem represents one line within an order. unit_price, item_name and
// item_description are snapshots taken from the menu at order time so that
// later menu edits cannot change historical pricing.
type OrderItem struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	OrderID    uint   `gorm:"not null;index" json:"order_id"`
	Order      *Order `gorm:"foreignKey:OrderID" json:"-"`
	MenuItemID uint   `gorm:"not null;index" json:"menu_item_id"`

	ItemName        string  `gorm:"not null" json:"item_name"`
	ItemDescription string  `gorm:"type:text" json:"item_description"`
	Quantity        int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice       float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal        float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`    // unit_price * quantity
	TotalPrice      float64 `gorm:"type:decimal(12,2);not null" json:"total_price"` // subtotal + modifier adjustments * quantity

	Status              string              `gorm:"not null;default:'pending'" json:"status"` // pending, confirmed, preparing, ready, served, cancelled
	SpecialInstructions string              `gorm:"type:text" json:"special_instructions"`
	Modifiers           []OrderItemModifier `gorm:"foreignKey:OrderItemID" json:"modifiers,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderItemModifier records one selected modifier option on a line, with the
// group/option names and price adjustment snapshotted. Immutable once created.
type OrderItemModifier struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	OrderItemID      uint       `gorm:"not null;index" json:"order_item_id"`
	OrderItem        *OrderItem `gorm:"foreignKey:OrderItemID" json:"-"`
	ModifierGroupID  uint       `gorm:"not null" json:"modifier_group_id"`
	ModifierOptionID uint       `gorm:"not null" json:"modifier_option_id"`
	GroupName        string     `gorm:"not null" json:"group_name"`
	OptionName       string     `gorm:"not null" json:"option_name"`
	PriceAdjustment  float64    `gorm:"type:decimal(12,2);not null;default:0" json:"price_adjustment"`
	CreatedAt        time.Time  `json:"created_at"`
}

// TableName specifies the table name for the OrderItemModifier model
func (OrderItemModifier) TableName() string {
	return "order_item_modifiers"
}
