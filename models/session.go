package models

import (
	"time"

	"gorm.io/gorm"
)

// Session status values
const (
	SessionStatusActive         = "active"
	SessionStatusPendingPayment = "pending_payment"
	SessionStatusCompleted      = "completed"
	SessionStatusCancelled      = "cancelled"
)

// Session payment_status values
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Session represents one dining visit at a table. It groups the customer
// orders placed during the visit into a single payable bill. At most one
// session per table may be in the "active" state; the creating transaction
// checks this and a partial unique index backs the check at the database
// level (see EnsureSessionIndexes).
type Session struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	SessionNumber string       `gorm:"uniqueIndex;not null" json:"session_number"`
	TableID       uint         `gorm:"not null;index" json:"table_id"`
	Table         *DiningTable `gorm:"foreignKey:TableID" json:"table,omitempty"`
	CustomerID    *uint        `gorm:"index" json:"customer_id"` // nullable until the session is claimed
	Customer      *User        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status        string       `gorm:"not null;default:'active';index" json:"status"` // active, pending_payment, completed, cancelled
	Orders        []Order      `gorm:"foreignKey:SessionID" json:"orders,omitempty"`

	Subtotal float64 `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	Tax      float64 `gorm:"type:decimal(12,2);not null;default:0" json:"tax"`
	Discount float64 `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total    float64 `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	PaymentMethod string  `json:"payment_method"`                                       // cash, momo
	PaymentStatus string  `gorm:"not null;default:'unpaid'" json:"payment_status"`      // unpaid, pending, paid, failed, refunded
	PaymentAmount float64 `gorm:"type:decimal(12,2);not null;default:0" json:"payment_amount"` // amount recorded when a gateway payment was initiated

	// Gateway references: request/order ids we issued at initiation, and the
	// transaction id the gateway reported in its callback. The transaction id
	// doubles as the idempotency key for callback replay detection.
	PaymentRequestID *string `json:"payment_request_id,omitempty"`
	PaymentOrderID   *string `json:"payment_order_id,omitempty"`
	PaymentTransID   *string `gorm:"index" json:"payment_trans_id,omitempty"`

	CancelReason string     `json:"cancel_reason,omitempty"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Session model
func (Session) TableName() string {
	return "sessions"
}

// IsTerminal reports whether the session can no longer accept orders or payment
func (s *Session) IsTerminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}
