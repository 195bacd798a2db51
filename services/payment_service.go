package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhthang2k5/smart-restaurant-sub000/models"
	"github.com/minhthang2k5/smart-restaurant-sub000/utils"
)

// momoSuccessCode is the result code MoMo reports for a captured payment
const momoSuccessCode = 0

// PaymentStatus is the read-only projection of a session's payment fields
type PaymentStatus struct {
	SessionID     uint    `json:"session_id"`
	SessionNumber string  `json:"session_number"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	PaymentMethod string  `json:"payment_method"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transaction_id,omitempty"`
}

// PaymentService drives session payment through the external gateway. It is
// the sole writer of payment-related session fields and of the
// payment_transactions audit trail.
type PaymentService struct {
	db      *gorm.DB
	gateway PaymentGateway
	taxRate float64
}

var paymentServiceInstance *PaymentService

// InitPaymentService initializes the payment service
func InitPaymentService(db *gorm.DB, gateway PaymentGateway, taxRate float64) *PaymentService {
	paymentServiceInstance = &PaymentService{db: db, gateway: gateway, taxRate: taxRate}
	return paymentServiceInstance
}

// GetPaymentService returns the initialized payment service instance
func GetPaymentService() *PaymentService {
	return paymentServiceInstance
}

// SetPaymentService sets the payment service instance (primarily for testing)
func SetPaymentService(s *PaymentService) {
	paymentServiceInstance = s
}

// InitiatePayment starts a gateway payment for the session's current bill and
// returns the redirect URL the customer pays at. The gateway call happens
// inside the transaction: a gateway failure rolls back the whole attempt and
// leaves the session untouched.
func (s *PaymentService) InitiatePayment(sessionID uint, actor *models.User) (string, error) {
	if actor == nil {
		return "", &ValidationError{Field: "actor", Message: "authentication is required to pay"}
	}

	var payURL string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.Preload("Orders").First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "session", ID: sessionID}
			}
			return err
		}

		if session.CustomerID != nil && *session.CustomerID != actor.ID && !actor.IsStaff() {
			return &ForbiddenError{Message: "session belongs to another customer"}
		}
		if session.IsTerminal() {
			return &ConflictError{Code: "SESSION_NOT_ACTIVE", Message: "session is no longer payable"}
		}
		if session.PaymentStatus == models.PaymentStatusPaid {
			return &ConflictError{Code: "DUPLICATE_PAYMENT", Message: "session is already paid"}
		}

		billable := 0
		for _, order := range session.Orders {
			if order.Status != models.OrderStatusRejected {
				billable++
			}
		}
		if billable == 0 {
			return &ValidationError{Field: "session", Message: "session has no billable orders"}
		}

		totals := ComputeSessionTotals(session.Orders, s.taxRate, session.Discount)
		if totals.Total <= 0 {
			return &ValidationError{Field: "session", Message: "session total must be positive"}
		}
		min, max := s.gateway.AmountBounds()
		if totals.Total < min || totals.Total > max {
			return &ValidationError{
				Field:   "amount",
				Message: fmt.Sprintf("amount %.0f is outside the gateway's accepted range [%.0f, %.0f]", totals.Total, min, max),
			}
		}

		if session.Status == models.SessionStatusActive {
			if err := session.Transition(models.SessionStatusPendingPayment); err != nil {
				return err
			}
		}

		requestID := uuid.NewString()
		gatewayOrderID := fmt.Sprintf("%s-%s", session.SessionNumber, uuid.NewString()[:8])
		resp, err := s.gateway.CreatePayment(CreatePaymentRequest{
			OrderID:   gatewayOrderID,
			RequestID: requestID,
			Amount:    totals.Total,
			OrderInfo: fmt.Sprintf("Payment for session %s", session.SessionNumber),
			ExtraData: EncodeExtraData(session.ID),
		})
		if err != nil {
			return err
		}

		session.Subtotal = totals.Subtotal
		session.Tax = totals.Tax
		session.Total = totals.Total
		session.PaymentMethod = "momo"
		session.PaymentStatus = models.PaymentStatusPending
		session.PaymentAmount = totals.Total
		session.PaymentRequestID = &requestID
		session.PaymentOrderID = &gatewayOrderID
		if err := tx.Model(&session).
			Select("status", "subtotal", "tax", "total", "payment_method", "payment_status",
				"payment_amount", "payment_request_id", "payment_order_id").
			Updates(&session).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.PaymentTransaction{
			SessionID:     session.ID,
			PaymentMethod: "momo",
			RequestID:     requestID,
			Amount:        totals.Total,
			Status:        models.TransactionStatusPending,
			Message:       "payment initiated",
		}).Error; err != nil {
			return err
		}

		payURL = resp.PayURL
		return nil
	})
	if err != nil {
		return "", err
	}
	return payURL, nil
}

// ProcessCallback verifies and applies one gateway callback. Callbacks may be
// delivered more than once and out of order; a callback whose transaction id
// is already in the audit trail, or that arrives after the session settled,
// short-circuits as a success without reapplying. Signature and amount
// failures reject the callback without any state change.
func (s *PaymentService) ProcessCallback(cb *MomoCallback) error {
	// Fail closed before touching any state
	if err := s.gateway.VerifyCallback(cb); err != nil {
		return err
	}

	sessionID, err := DecodeExtraData(cb.ExtraData)
	if err != nil {
		return &ValidationError{Field: "extraData", Message: "could not extract session id from callback"}
	}

	transID := strconv.FormatInt(cb.TransID, 10)
	var session models.Session
	var succeeded, stale bool
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Orders").First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "session", ID: sessionID}
			}
			return err
		}

		// Idempotent replay: this callback was already applied
		if session.PaymentTransID != nil && *session.PaymentTransID == transID {
			stale = true
			return nil
		}

		// The session field only remembers the latest transaction, so a
		// redelivery of an older callback is caught against the append-only
		// audit trail
		var applied int64
		if err := tx.Model(&models.PaymentTransaction{}).
			Where("session_id = ? AND transaction_id = ?", session.ID, transID).
			Count(&applied).Error; err != nil {
			return err
		}
		if applied > 0 {
			stale = true
			return nil
		}

		// A settled bill is final: late deliveries for a paid or terminal
		// session are acknowledged without reapplying any outcome
		if session.PaymentStatus == models.PaymentStatusPaid || session.IsTerminal() {
			stale = true
			return nil
		}

		if !utils.AmountsEqual(cb.Amount, session.PaymentAmount) {
			return &AmountMismatchError{Expected: session.PaymentAmount, Got: cb.Amount}
		}

		rawPayload, _ := json.Marshal(cb)
		now := time.Now()

		if cb.ResultCode == momoSuccessCode {
			succeeded = true
			if err := session.Transition(models.SessionStatusCompleted); err != nil {
				return err
			}
			session.PaymentStatus = models.PaymentStatusPaid
			session.PaymentTransID = &transID
			session.CompletedAt = &now
			if err := tx.Model(&session).
				Select("status", "payment_status", "payment_trans_id", "completed_at").
				Updates(&session).Error; err != nil {
				return err
			}

			for i := range session.Orders {
				order := &session.Orders[i]
				if order.Status == models.OrderStatusRejected || order.Status == models.OrderStatusCompleted {
					continue
				}
				if err := tx.Model(order).
					Updates(map[string]interface{}{"status": models.OrderStatusCompleted, "completed_at": now}).Error; err != nil {
					return err
				}
			}

			return tx.Create(&models.PaymentTransaction{
				SessionID:     session.ID,
				PaymentMethod: "momo",
				TransactionID: transID,
				RequestID:     cb.RequestID,
				Amount:        cb.Amount,
				Status:        models.TransactionStatusCompleted,
				ResponseCode:  strconv.Itoa(cb.ResultCode),
				Message:       cb.Message,
				RawPayload:    string(rawPayload),
			}).Error
		}

		// Gateway reported failure: the bill stays open for another attempt
		if err := session.Transition(models.SessionStatusActive); err != nil {
			return err
		}
		session.PaymentStatus = models.PaymentStatusFailed
		session.PaymentTransID = &transID
		if err := tx.Model(&session).
			Select("status", "payment_status", "payment_trans_id").
			Updates(&session).Error; err != nil {
			return err
		}

		return tx.Create(&models.PaymentTransaction{
			SessionID:     session.ID,
			PaymentMethod: "momo",
			TransactionID: transID,
			RequestID:     cb.RequestID,
			Amount:        cb.Amount,
			Status:        models.TransactionStatusFailed,
			ResponseCode:  strconv.Itoa(cb.ResultCode),
			Message:       cb.Message,
			RawPayload:    string(rawPayload),
		}).Error
	})
	if err != nil {
		return err
	}
	if stale {
		// Redelivered or late callback: already settled, nothing to redo
		return nil
	}

	publishEvent(Event{
		Type:      EventPaymentStatusChanged,
		TableID:   session.TableID,
		SessionID: session.ID,
		Data: map[string]interface{}{
			"payment_status": session.PaymentStatus,
			"result_code":    cb.ResultCode,
			"message":        cb.Message,
		},
	})
	if succeeded {
		publishEvent(Event{
			Type:      EventSessionCompleted,
			TableID:   session.TableID,
			SessionID: session.ID,
			Data: map[string]interface{}{
				"session_number": session.SessionNumber,
				"total":          session.Total,
				"payment_method": "momo",
			},
		})
	}
	return nil
}

// CancelPayment abandons an unfinished payment and cancels the session. Not
// legal once the session is paid.
func (s *PaymentService) CancelPayment(sessionID uint, reason string, actor *models.User) (*models.Session, error) {
	var session models.Session
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "session", ID: sessionID}
			}
			return err
		}
		if session.CustomerID != nil && actor != nil && *session.CustomerID != actor.ID && !actor.IsStaff() {
			return &ForbiddenError{Message: "session belongs to another customer"}
		}
		if session.PaymentStatus == models.PaymentStatusPaid {
			return &ConflictError{Code: "DUPLICATE_PAYMENT", Message: "session is already paid"}
		}

		session.PaymentStatus = models.PaymentStatusFailed
		session.Status = models.SessionStatusCancelled
		session.CancelReason = reason
		if err := tx.Model(&session).
			Select("status", "payment_status", "cancel_reason").
			Updates(&session).Error; err != nil {
			return err
		}

		return tx.Create(&models.PaymentTransaction{
			SessionID:     session.ID,
			PaymentMethod: session.PaymentMethod,
			Amount:        session.PaymentAmount,
			Status:        models.TransactionStatusCancelled,
			Message:       fmt.Sprintf("cancelled by user: %s", reason),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	publishEvent(Event{
		Type:      EventPaymentStatusChanged,
		TableID:   session.TableID,
		SessionID: session.ID,
		Data:      map[string]interface{}{"payment_status": session.PaymentStatus},
	})
	return &session, nil
}

// GetPaymentStatus returns the session's payment projection. A claimed
// session is only visible to its customer and staff.
func (s *PaymentService) GetPaymentStatus(sessionID uint, actor *models.User) (*PaymentStatus, error) {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "session", ID: sessionID}
		}
		return nil, err
	}
	if session.CustomerID != nil {
		if actor == nil || (*session.CustomerID != actor.ID && !actor.IsStaff()) {
			return nil, &ForbiddenError{Message: "session belongs to another customer"}
		}
	}

	status := &PaymentStatus{
		SessionID:     session.ID,
		SessionNumber: session.SessionNumber,
		Status:        session.Status,
		PaymentStatus: session.PaymentStatus,
		PaymentMethod: session.PaymentMethod,
		Amount:        session.PaymentAmount,
	}
	if session.PaymentTransID != nil {
		status.TransactionID = *session.PaymentTransID
	}
	return status, nil
}

// extraData carried through the gateway round-trip, base64-encoded JSON
type extraData struct {
	SessionID uint `json:"sessionId"`
}

// EncodeExtraData packs the session id into the gateway's opaque extraData field
func EncodeExtraData(sessionID uint) string {
	raw, _ := json.Marshal(extraData{SessionID: sessionID})
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeExtraData recovers the session id from a callback's extraData field
func DecodeExtraData(encoded string) (uint, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return 0, fmt.Errorf("invalid extraData encoding: %w", err)
	}
	var data extraData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, fmt.Errorf("invalid extraData payload: %w", err)
	}
	if data.SessionID == 0 {
		return 0, fmt.Errorf("extraData is missing sessionId")
	}
	return data.SessionID, nil
}
