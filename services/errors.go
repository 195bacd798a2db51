package services

import "fmt"

// ValidationError reports missing or malformed input. No side effects occur.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports an absent session/order/table/menu item
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// ConflictError reports a state conflict such as a duplicate active session,
// a duplicate payment, or a session already claimed by another customer
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ForbiddenError reports an actor acting on a resource it does not own
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// ExternalServiceError reports a gateway that is unreachable or returned a
// non-success response
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// SignatureError reports a payment callback whose authenticity signature does
// not verify. Such callbacks are always rejected outright.
type SignatureError struct {
	Message string
}

func (e *SignatureError) Error() string {
	return e.Message
}

// AmountMismatchError reports a payment callback whose amount does not match
// the amount recorded when the payment was initiated
type AmountMismatchError struct {
	Expected float64
	Got      float64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("callback amount %.2f does not match pending amount %.2f", e.Got, e.Expected)
}
