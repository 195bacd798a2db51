package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/minhthang2k5/smart-restaurant-sub000/models"
)

// OrderModifierInput selects one modifier option on a line
type OrderModifierInput struct {
	OptionID uint `json:"optionId" binding:"required"`
}

// OrderItemInput is one requested line in a new order
type OrderItemInput struct {
	MenuItemID          uint                 `json:"menuItemId" binding:"required"`
	Quantity            int                  `json:"quantity" binding:"required,gt=0"`
	SpecialInstructions string               `json:"specialInstructions"`
	Modifiers           []OrderModifierInput `json:"modifiers"`
}

// CreateOrderInput is the payload for creating an order within a session
type CreateOrderInput struct {
	Items []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// Bill is a read-only preview of what completing the session would charge
type Bill struct {
	SessionID     uint           `json:"session_id"`
	SessionNumber string         `json:"session_number"`
	TableID       uint           `json:"table_id"`
	Orders        []models.Order `json:"orders"`
	Subtotal      float64        `json:"subtotal"`
	Tax           float64        `json:"tax"`
	Discount      float64        `json:"discount"`
	Total         float64        `json:"total"`
}

// SessionService orchestrates the table-session and order lifecycle. Every
// mutating operation runs inside a single database transaction; notification
// fan-out happens only after the transaction commits.
type SessionService struct {
	db      *gorm.DB
	taxRate float64
}

var sessionServiceInstance *SessionService

// InitSessionService initializes the session service
func InitSessionService(db *gorm.DB, taxRate float64) *SessionService {
	sessionServiceInstance = &SessionService{db: db, taxRate: taxRate}
	return sessionServiceInstance
}

// GetSessionService returns the initialized session service instance
func GetSessionService() *SessionService {
	return sessionServiceInstance
}

// SetSessionService sets the session service instance (primarily for testing)
func SetSessionService(s *SessionService) {
	sessionServiceInstance = s
}

// CreateSession starts a dining visit at a table. At most one active session
// may exist per table; the check runs inside the creating transaction and the
// partial unique index from EnsureSessionIndexes closes the remaining race at
// the database level.
func (s *SessionService) CreateSession(tableID uint, actor *models.User) (*models.Session, error) {
	if tableID == 0 {
		return nil, &ValidationError{Field: "tableId", Message: "table id is required"}
	}

	var session *models.Session
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var table models.DiningTable
		if err := tx.First(&table, tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "table", ID: tableID}
			}
			return err
		}
		if table.Status != "active" {
			return &ValidationError{Field: "tableId", Message: "table is not active"}
		}

		var count int64
		if err := tx.Model(&models.Session{}).
			Where("table_id = ? AND status IN ?", tableID,
				[]string{models.SessionStatusActive, models.SessionStatusPendingPayment}).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{
				Code:    "SESSION_CONFLICT",
				Message: fmt.Sprintf("table %s already has an active session", table.Number),
			}
		}

		session = &models.Session{
			SessionNumber: GenerateSessionNumber(),
			TableID:       tableID,
			Status:        models.SessionStatusActive,
			PaymentStatus: models.PaymentStatusUnpaid,
			StartedAt:     time.Now(),
		}
		if actor != nil && actor.Role == "customer" {
			session.CustomerID = &actor.ID
		}
		return tx.Create(session).Error
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetActiveSessionByTable returns the table's current active session with its
// orders loaded
func (s *SessionService) GetActiveSessionByTable(tableID uint) (*models.Session, error) {
	var session models.Session
	err := s.db.Where("table_id = ? AND status IN ?", tableID,
		[]string{models.SessionStatusActive, models.SessionStatusPendingPayment}).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("orders.created_at ASC") }).
		Preload("Orders.Items").
		Preload("Orders.Items.Modifiers").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "active session for table", ID: tableID}
		}
		return nil, err
	}
	return &session, nil
}

// GetSession returns one session with its orders loaded
func (s *SessionService) GetSession(sessionID uint) (*models.Session, error) {
	var session models.Session
	err := s.db.Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("orders.created_at ASC") }).
		Preload("Orders.Items").
		Preload("Orders.Items.Modifiers").
		First(&session, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "session", ID: sessionID}
		}
		return nil, err
	}
	return &session, nil
}

// ClaimSession binds a customer identity to a session after login. Binding is
// first-writer-wins: claiming an unclaimed session (or one already claimed by
// the same customer) succeeds; claiming a session owned by a different
// customer returns the session unchanged rather than erroring.
func (s *SessionService) ClaimSession(sessionID uint, actor *models.User) (*models.Session, error) {
	if actor == nil {
		return nil, &ValidationError{Field: "actor", Message: "authentication is required to claim a session"}
	}

	var session models.Session
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "session", ID: sessionID}
			}
			return err
		}
		if session.IsTerminal() {
			return &ConflictError{Code: "SESSION_NOT_ACTIVE", Message: "session is no longer active"}
		}
		if session.CustomerID != nil {
			// Already claimed. First writer wins, even for a different customer.
			return nil
		}
		session.CustomerID = &actor.ID
		return tx.Model(&session).Update("customer_id", actor.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateOrder creates an order with line items and modifiers inside the
// session. Prices and names are snapshotted from the menu at this moment;
// later menu edits never change the order.
func (s *SessionService) CreateOrder(sessionID uint, input CreateOrderInput, actor *models.User) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, &ValidationError{Field: "items", Message: "at least one item is required"}
	}
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be positive"}
		}
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "session", ID: sessionID}
			}
			return err
		}
		if session.Status != models.SessionStatusActive {
			return &ConflictError{Code: "SESSION_NOT_ACTIVE", Message: "orders can only be added to an active session"}
		}

		lines, orderSubtotal, err := s.buildOrderLines(tx, input.Items)
		if err != nil {
			return err
		}

		totals := totalsFromSubtotal(orderSubtotal, s.taxRate, 0)
		order = &models.Order{
			OrderNumber: GenerateOrderNumber(),
			SessionID:   &session.ID,
			TableID:     session.TableID,
			CustomerID:  session.CustomerID,
			Status:      models.OrderStatusPending,
			Subtotal:    totals.Subtotal,
			Tax:         totals.Tax,
			Total:       totals.Total,
			Items:       lines,
		}
		if actor != nil && actor.Role == "customer" {
			order.CustomerID = &actor.ID
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		return s.refreshSessionTotals(tx, &session)
	})
	if err != nil {
		return nil, err
	}

	publishEvent(Event{
		Type:      EventOrderCreated,
		TableID:   order.TableID,
		SessionID: sessionID,
		OrderID:   order.ID,
		Data: map[string]interface{}{
			"order_number": order.OrderNumber,
			"total":        order.Total,
			"item_count":   len(order.Items),
		},
	})
	return order, nil
}

// buildOrderLines loads each referenced menu item with its modifier groups
// assembled, validates the selected options against them, and produces priced
// line snapshots
func (s *SessionService) buildOrderLines(tx *gorm.DB, items []OrderItemInput) ([]models.OrderItem, float64, error) {
	var lines []models.OrderItem
	var subtotal float64

	for _, input := range items {
		menuItem, err := loadMenuItemWithModifiers(tx, input.MenuItemID)
		if err != nil {
			return nil, 0, err
		}
		if !menuItem.IsAvailable {
			return nil, 0, &ValidationError{
				Field:   "menuItemId",
				Message: fmt.Sprintf("menu item %q is not available", menuItem.Name),
			}
		}

		var modifiers []models.OrderItemModifier
		var adjustments []float64
		for _, sel := range input.Modifiers {
			option, group, err := findMenuItemOption(menuItem, sel.OptionID)
			if err != nil {
				return nil, 0, err
			}
			modifiers = append(modifiers, models.OrderItemModifier{
				ModifierGroupID:  group.ID,
				ModifierOptionID: option.ID,
				GroupName:        group.Name,
				OptionName:       option.Name,
				PriceAdjustment:  option.PriceAdjustment,
			})
			adjustments = append(adjustments, option.PriceAdjustment)
		}

		price := PriceLine(menuItem.Price, input.Quantity, adjustments)
		lines = append(lines, models.OrderItem{
			MenuItemID:          menuItem.ID,
			ItemName:            menuItem.Name,
			ItemDescription:     menuItem.Description,
			Quantity:            input.Quantity,
			UnitPrice:           menuItem.Price,
			Subtotal:            price.Subtotal,
			TotalPrice:          price.TotalPrice,
			Status:              models.ItemStatusPending,
			SpecialInstructions: input.SpecialInstructions,
			Modifiers:           modifiers,
		})
		subtotal += price.TotalPrice
	}
	return lines, subtotal, nil
}

// loadMenuItemWithModifiers returns the menu item with its modifier groups
// and their options fully assembled
func loadMenuItemWithModifiers(tx *gorm.DB, menuItemID uint) (*models.MenuItem, error) {
	var menuItem models.MenuItem
	err := tx.Preload("ModifierGroups").
		Preload("ModifierGroups.Options").
		First(&menuItem, menuItemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "menu item", ID: menuItemID}
		}
		return nil, err
	}
	return &menuItem, nil
}

// findMenuItemOption resolves a selected option id against the menu item's
// attached modifier groups
func findMenuItemOption(menuItem *models.MenuItem, optionID uint) (*models.ModifierOption, *models.ModifierGroup, error) {
	for gi := range menuItem.ModifierGroups {
		group := &menuItem.ModifierGroups[gi]
		for oi := range group.Options {
			option := &group.Options[oi]
			if option.ID != optionID {
				continue
			}
			if !option.IsAvailable {
				return nil, nil, &ValidationError{
					Field:   "modifiers",
					Message: fmt.Sprintf("modifier option %q is not available", option.Name),
				}
			}
			return option, group, nil
		}
	}
	return nil, nil, &ValidationError{
		Field:   "modifiers",
		Message: fmt.Sprintf("modifier option %d does not apply to menu item %q", optionID, menuItem.Name),
	}
}

// AcceptOrder moves a pending order to accepted and every pending line to
// confirmed, atomically
func (s *SessionService) AcceptOrder(orderID uint, actor *models.User) (*models.Order, error) {
	if actor == nil || !actor.IsStaff() {
		return nil, &ForbiddenError{Message: "only staff can accept orders"}
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "order", ID: orderID}
			}
			return err
		}
		if err := order.Transition(models.OrderStatusAccepted); err != nil {
			return err
		}

		now := time.Now()
		order.AcceptedAt = &now
		order.WaiterID = &actor.ID
		if err := tx.Model(&order).Select("status", "accepted_at", "waiter_id").Updates(&order).Error; err != nil {
			return err
		}

		for i := range order.Items {
			if order.Items[i].Status != models.ItemStatusPending {
				continue
			}
			if err := order.Items[i].Transition(models.ItemStatusConfirmed); err != nil {
				return err
			}
			if err := tx.Model(&order.Items[i]).Update("status", models.ItemStatusConfirmed).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent(Event{
		Type:      EventOrderStatusChanged,
		TableID:   order.TableID,
		SessionID: derefSessionID(order.SessionID),
		OrderID:   order.ID,
		Data:      map[string]interface{}{"status": order.Status, "order_number": order.OrderNumber},
	})
	return &order, nil
}

// RejectOrder rejects a pending order with a non-empty reason, cancels its
// pending lines and removes it from the session totals
func (s *SessionService) RejectOrder(orderID uint, reason string, actor *models.User) (*models.Order, error) {
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Message: "a rejection reason is required"}
	}
	if actor == nil || !actor.IsStaff() {
		return nil, &ForbiddenError{Message: "only staff can reject orders"}
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "order", ID: orderID}
			}
			return err
		}
		if err := order.Transition(models.OrderStatusRejected); err != nil {
			return err
		}

		order.RejectionReason = &reason
		order.WaiterID = &actor.ID
		if err := tx.Model(&order).Select("status", "rejection_reason", "waiter_id").Updates(&order).Error; err != nil {
			return err
		}

		for i := range order.Items {
			if order.Items[i].Status != models.ItemStatusPending {
				continue
			}
			if err := order.Items[i].Transition(models.ItemStatusCancelled); err != nil {
				return err
			}
			if err := tx.Model(&order.Items[i]).Update("status", models.ItemStatusCancelled).Error; err != nil {
				return err
			}
		}

		if order.SessionID == nil {
			return nil
		}
		var session models.Session
		if err := tx.First(&session, *order.SessionID).Error; err != nil {
			return err
		}
		return s.refreshSessionTotals(tx, &session)
	})
	if err != nil {
		return nil, err
	}

	publishEvent(Event{
		Type:      EventOrderRejected,
		TableID:   order.TableID,
		SessionID: derefSessionID(order.SessionID),
		OrderID:   order.ID,
		Data:      map[string]interface{}{"order_number": order.OrderNumber, "reason": reason},
	})
	return &order, nil
}

// UpdateOrderStatus advances an order through its state machine. Accepting is
// redirected through AcceptOrder so its item cascade stays atomic; rejecting
// must go through RejectOrder because it requires a reason.
func (s *SessionService) UpdateOrderStatus(orderID uint, newStatus string, actor *models.User) (*models.Order, error) {
	if !models.IsValidOrderStatus(newStatus) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown order status %q", newStatus)}
	}
	if newStatus == models.OrderStatusAccepted {
		return s.AcceptOrder(orderID, actor)
	}
	if newStatus == models.OrderStatusRejected {
		return nil, &ValidationError{Field: "status", Message: "rejecting requires the reject operation with a reason"}
	}
	if actor == nil || !actor.IsStaff() {
		return nil, &ForbiddenError{Message: "only staff can update order status"}
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "order", ID: orderID}
			}
			return err
		}
		if err := order.Transition(newStatus); err != nil {
			return err
		}
		if newStatus == models.OrderStatusCompleted {
			now := time.Now()
			order.CompletedAt = &now
		}
		return tx.Model(&order).Select("status", "completed_at").Updates(&order).Error
	})
	if err != nil {
		return nil, err
	}

	publishEvent(Event{
		Type:      EventOrderStatusChanged,
		TableID:   order.TableID,
		SessionID: derefSessionID(order.SessionID),
		OrderID:   order.ID,
		Data:      map[string]interface{}{"status": order.Status, "order_number": order.OrderNumber},
	})
	if newStatus == models.OrderStatusReady {
		// Distinct push so waiters get a pick-up signal
		publishEvent(Event{
			Type:      EventOrderReady,
			TableID:   order.TableID,
			SessionID: derefSessionID(order.SessionID),
			OrderID:   order.ID,
			Data:      map[string]interface{}{"order_number": order.OrderNumber},
		})
	}
	return &order, nil
}

// UpdateItemStatus advances one order line through the item state machine
func (s *SessionService) UpdateItemStatus(itemID uint, newStatus string, actor *models.User) (*models.OrderItem, error) {
	if !models.IsValidItemStatus(newStatus) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown item status %q", newStatus)}
	}
	if actor == nil || !actor.IsStaff() {
		return nil, &ForbiddenError{Message: "only staff can update item status"}
	}

	var item models.OrderItem
	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "order item", ID: itemID}
			}
			return err
		}
		if err := tx.First(&order, item.OrderID).Error; err != nil {
			return err
		}
		if err := item.Transition(newStatus); err != nil {
			return err
		}
		return tx.Model(&item).Update("status", newStatus).Error
	})
	if err != nil {
		return nil, err
	}

	publishEvent(Event{
		Type:      EventItemStatusChanged,
		TableID:   order.TableID,
		SessionID: derefSessionID(order.SessionID),
		OrderID:   order.ID,
		Data:      map[string]interface{}{"item_id": item.ID, "item_name": item.ItemName, "status": item.Status},
	})
	return &item, nil
}

// CompleteSession finalizes the visit: recomputes the bill over all
// non-rejected orders, marks the session paid and completed, and cascades the
// non-rejected orders to completed. The cascade is the session-level terminal
// sweep and deliberately does not walk each order through the per-step machine.
func (s *SessionService) CompleteSession(sessionID uint, paymentMethod string, actor *models.User) (*models.Session, error) {
	if paymentMethod == "" {
		return nil, &ValidationError{Field: "paymentMethod", Message: "a payment method is required"}
	}
	if actor == nil || !actor.IsStaff() {
		return nil, &ForbiddenError{Message: "only staff can complete sessions"}
	}

	var session models.Session
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Orders").First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "session", ID: sessionID}
			}
			return err
		}
		if err := session.Transition(models.SessionStatusCompleted); err != nil {
			return err
		}

		totals := ComputeSessionTotals(session.Orders, s.taxRate, session.Discount)
		now := time.Now()
		session.Subtotal = totals.Subtotal
		session.Tax = totals.Tax
		session.Total = totals.Total
		session.PaymentMethod = paymentMethod
		session.PaymentStatus = models.PaymentStatusPaid
		session.CompletedAt = &now

		if err := tx.Model(&session).
			Select("status", "subtotal", "tax", "total", "payment_method", "payment_status", "completed_at").
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
			order.Status = models.OrderStatusCompleted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent(Event{
		Type:      EventSessionCompleted,
		TableID:   session.TableID,
		SessionID: session.ID,
		Data: map[string]interface{}{
			"session_number": session.SessionNumber,
			"total":          session.Total,
			"payment_method": session.PaymentMethod,
		},
	})
	return &session, nil
}

// CancelSession cancels an active session with a free-text reason. Only legal
// from the active state; a session mid-payment must resolve the payment first.
func (s *SessionService) CancelSession(sessionID uint, reason string, actor *models.User) (*models.Session, error) {
	if actor == nil || !actor.IsStaff() {
		return nil, &ForbiddenError{Message: "only staff can cancel sessions"}
	}

	var session models.Session
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "session", ID: sessionID}
			}
			return err
		}
		if session.Status != models.SessionStatusActive {
			return &models.InvalidTransitionError{
				Entity:    "session",
				Current:   session.Status,
				Attempted: models.SessionStatusCancelled,
				Allowed:   allowedFrom(session.Status),
			}
		}
		session.Status = models.SessionStatusCancelled
		session.CancelReason = reason
		return tx.Model(&session).Select("status", "cancel_reason").Updates(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// allowedFrom lists cancellation-relevant targets for error reporting
func allowedFrom(status string) []string {
	if status == models.SessionStatusPendingPayment {
		return []string{models.SessionStatusActive, models.SessionStatusCompleted}
	}
	return nil
}

// BillPreview computes what completing the session now would charge, without
// mutating anything. It uses the same totals computation as CompleteSession.
func (s *SessionService) BillPreview(sessionID uint) (*Bill, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	var billable []models.Order
	for _, order := range session.Orders {
		if order.Status != models.OrderStatusRejected {
			billable = append(billable, order)
		}
	}
	totals := ComputeSessionTotals(session.Orders, s.taxRate, session.Discount)
	return &Bill{
		SessionID:     session.ID,
		SessionNumber: session.SessionNumber,
		TableID:       session.TableID,
		Orders:        billable,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Discount:      totals.Discount,
		Total:         totals.Total,
	}, nil
}

// refreshSessionTotals recomputes the session's aggregate totals from its
// current non-rejected orders, inside the caller's transaction
func (s *SessionService) refreshSessionTotals(tx *gorm.DB, session *models.Session) error {
	var orders []models.Order
	if err := tx.Where("session_id = ?", session.ID).Find(&orders).Error; err != nil {
		return err
	}
	totals := ComputeSessionTotals(orders, s.taxRate, session.Discount)
	session.Subtotal = totals.Subtotal
	session.Tax = totals.Tax
	session.Total = totals.Total
	return tx.Model(session).
		Select("subtotal", "tax", "total").
		Updates(map[string]interface{}{"subtotal": totals.Subtotal, "tax": totals.Tax, "total": totals.Total}).Error
}

func derefSessionID(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}

// EnsureSessionIndexes creates the partial unique index enforcing at most one
// active session per table. Postgres only; the application-level check in
// CreateSession covers engines without partial-index support (sqlite in tests
// gets the same index through raw SQL in the test setup).
func EnsureSessionIndexes(db *gorm.DB) error {
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active_per_table
		ON sessions (table_id)
		WHERE status IN ('active', 'pending_payment') AND deleted_at IS NULL`).Error
}
