package services

import "sync"

// MockPaymentGateway is a PaymentGateway stand-in for tests. It records
// create-payment requests and returns a configurable response or error.
type MockPaymentGateway struct {
	mu sync.Mutex

	CreateResponse *CreatePaymentResponse
	CreateErr      error
	VerifyErr      error
	MinAmount      float64
	MaxAmount      float64

	requests []CreatePaymentRequest
}

// NewMockPaymentGateway creates a mock gateway with permissive defaults
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{
		CreateResponse: &CreatePaymentResponse{
			PayURL:     "https://test-payment.momo.vn/pay/mock",
			ResultCode: 0,
			Message:    "Success",
		},
		MinAmount: 1000,
		MaxAmount: 50000000,
	}
}

// CreatePayment implements PaymentGateway
func (m *MockPaymentGateway) CreatePayment(req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	resp := *m.CreateResponse
	resp.OrderID = req.OrderID
	resp.RequestID = req.RequestID
	return &resp, nil
}

// VerifyCallback implements PaymentGateway
func (m *MockPaymentGateway) VerifyCallback(cb *MomoCallback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.VerifyErr
}

// AmountBounds implements PaymentGateway
func (m *MockPaymentGateway) AmountBounds() (float64, float64) {
	return m.MinAmount, m.MaxAmount
}

// Requests returns the recorded create-payment requests
func (m *MockPaymentGateway) Requests() []CreatePaymentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CreatePaymentRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
