package models

import (
	"time"
)

// PaymentTransaction status values
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusCancelled = "cancelled"
)

// PaymentTransaction is an append-only audit record of one payment attempt or
// gateway callback. Rows are never mutated after creation; every attempt and
// every applied callback appends a new row.
type PaymentTransaction struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	SessionID uint     `gorm:"not null;index" json:"session_id"`
	Session   *Session `gorm:"foreignKey:SessionID" json:"-"`

	PaymentMethod string `gorm:"not null" json:"payment_method"` // momo, cash
	TransactionID string `gorm:"index" json:"transaction_id"`    // gateway-assigned transaction id
	RequestID     string `gorm:"index" json:"request_id"`        // idempotency key from the initiating side

	Amount       float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status       string  `gorm:"not null;default:'pending'" json:"status"` // pending, completed, failed, cancelled
	ResponseCode string  `json:"response_code"`
	Message      string  `gorm:"type:text" json:"message"`
	RawPayload   string  `gorm:"type:text" json:"-"` // raw gateway payload for auditing

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the PaymentTransaction model
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
