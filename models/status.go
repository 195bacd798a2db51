package models

import (
	"fmt"
	"strings"
)

// Allowed transitions for each state machine. A status missing from the map,
// or mapped to an empty set, is terminal.
var (
	orderTransitions = map[string][]string{
		OrderStatusPending:   {OrderStatusAccepted, OrderStatusRejected},
		OrderStatusAccepted:  {OrderStatusPreparing},
		OrderStatusPreparing: {OrderStatusReady},
		OrderStatusReady:     {OrderStatusServed},
		OrderStatusServed:    {OrderStatusCompleted},
		OrderStatusRejected:  {},
		OrderStatusCompleted: {},
	}

	itemTransitions = map[string][]string{
		ItemStatusPending:   {ItemStatusConfirmed, ItemStatusCancelled},
		ItemStatusConfirmed: {ItemStatusPreparing},
		ItemStatusPreparing: {ItemStatusReady},
		ItemStatusReady:     {ItemStatusServed},
		ItemStatusServed:    {},
		ItemStatusCancelled: {},
	}

	sessionTransitions = map[string][]string{
		SessionStatusActive:         {SessionStatusPendingPayment, SessionStatusCompleted, SessionStatusCancelled},
		SessionStatusPendingPayment: {SessionStatusActive, SessionStatusCompleted, SessionStatusCancelled},
		SessionStatusCompleted:      {},
		SessionStatusCancelled:      {},
	}
)

// InvalidTransitionError reports a state-machine violation, naming the
// current state, the attempted state and the set of allowed targets.
type InvalidTransitionError struct {
	Entity    string
	Current   string
	Attempted string
	Allowed   []string
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s status %q is terminal, cannot transition to %q", e.Entity, e.Current, e.Attempted)
	}
	return fmt.Sprintf("%s cannot transition from %q to %q (allowed: %s)",
		e.Entity, e.Current, e.Attempted, strings.Join(e.Allowed, ", "))
}

func validateTransition(entity string, transitions map[string][]string, current, attempted string) error {
	allowed, ok := transitions[current]
	if !ok {
		return &InvalidTransitionError{Entity: entity, Current: current, Attempted: attempted}
	}
	for _, next := range allowed {
		if next == attempted {
			return nil
		}
	}
	return &InvalidTransitionError{Entity: entity, Current: current, Attempted: attempted, Allowed: allowed}
}

// ValidateOrderTransition checks an order status transition against the
// order state machine without applying it.
func ValidateOrderTransition(current, attempted string) error {
	return validateTransition("order", orderTransitions, current, attempted)
}

// ValidateItemTransition checks an order-item status transition against the
// item state machine without applying it.
func ValidateItemTransition(current, attempted string) error {
	return validateTransition("order item", itemTransitions, current, attempted)
}

// ValidateSessionTransition checks a session status transition against the
// session state machine without applying it.
func ValidateSessionTransition(current, attempted string) error {
	return validateTransition("session", sessionTransitions, current, attempted)
}

// Transition applies a validated status change to the order
func (o *Order) Transition(attempted string) error {
	if err := ValidateOrderTransition(o.Status, attempted); err != nil {
		return err
	}
	o.Status = attempted
	return nil
}

// Transition applies a validated status change to the order item
func (i *OrderItem) Transition(attempted string) error {
	if err := ValidateItemTransition(i.Status, attempted); err != nil {
		return err
	}
	i.Status = attempted
	return nil
}

// Transition applies a validated status change to the session
func (s *Session) Transition(attempted string) error {
	if err := ValidateSessionTransition(s.Status, attempted); err != nil {
		return err
	}
	s.Status = attempted
	return nil
}

// IsValidOrderStatus reports whether s is a known order status
func IsValidOrderStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsValidItemStatus reports whether s is a known order-item status
func IsValidItemStatus(s string) bool {
	_, ok := itemTransitions[s]
	return ok
}
