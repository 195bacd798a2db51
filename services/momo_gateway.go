package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/minhthang2k5/smart-restaurant-sub000/config"
)

// CreatePaymentRequest is the gateway-facing request to start a payment
type CreatePaymentRequest struct {
	OrderID   string  // merchant-side order id, unique per attempt
	RequestID string  // merchant-side request id (idempotency key)
	Amount    float64 // VND
	OrderInfo string
	ExtraData string // base64-encoded JSON carried through to the callback
}

// CreatePaymentResponse is the gateway's answer to a create-payment call
type CreatePaymentResponse struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	PayURL      string `json:"payUrl"`
	ResultCode  int    `json:"resultCode"`
	Message     string `json:"message"`
}

// MomoCallback is the IPN payload MoMo delivers after the customer pays.
// ExtraData is the base64 JSON we sent at creation; TransID is the
// gateway-assigned transaction id used for idempotent replay detection.
type MomoCallback struct {
	PartnerCode  string  `json:"partnerCode"`
	OrderID      string  `json:"orderId"`
	RequestID    string  `json:"requestId"`
	Amount       float64 `json:"amount"`
	OrderInfo    string  `json:"orderInfo"`
	OrderType    string  `json:"orderType"`
	TransID      int64   `json:"transId"`
	ResultCode   int     `json:"resultCode"`
	Message      string  `json:"message"`
	PayType      string  `json:"payType"`
	ResponseTime int64   `json:"responseTime"`
	ExtraData    string  `json:"extraData"`
	Signature    string  `json:"signature"`
}

// PaymentGateway abstracts the external payment provider so the coordinator
// can be tested without network calls
type PaymentGateway interface {
	// CreatePayment asks the gateway for a redirect URL the customer pays at
	CreatePayment(req CreatePaymentRequest) (*CreatePaymentResponse, error)

	// VerifyCallback checks the callback's authenticity signature
	VerifyCallback(cb *MomoCallback) error

	// AmountBounds returns the gateway's accepted payment amount range
	AmountBounds() (min, max float64)
}

// MomoGateway implements PaymentGateway against MoMo's v2 create API
type MomoGateway struct {
	endpoint    string
	partnerCode string
	accessKey   string
	secretKey   string
	redirectURL string
	ipnURL      string
	minAmount   float64
	maxAmount   float64
	httpClient  *http.Client
}

// NewMomoGateway creates a MoMo gateway client from configuration
func NewMomoGateway(cfg *config.Config) *MomoGateway {
	return &MomoGateway{
		endpoint:    cfg.MomoEndpoint,
		partnerCode: cfg.MomoPartnerCode,
		accessKey:   cfg.MomoAccessKey,
		secretKey:   cfg.MomoSecretKey,
		redirectURL: cfg.MomoRedirectURL,
		ipnURL:      cfg.MomoIPNURL,
		minAmount:   cfg.MomoMinAmount,
		maxAmount:   cfg.MomoMaxAmount,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AmountBounds returns the configured accepted amount range
func (g *MomoGateway) AmountBounds() (float64, float64) {
	return g.minAmount, g.maxAmount
}

// CreatePayment calls MoMo's create endpoint and returns the pay URL
func (g *MomoGateway) CreatePayment(req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	amount := formatAmount(req.Amount)

	// Raw signature material per MoMo's v2 spec: alphabetical key order
	raw := fmt.Sprintf("accessKey=%s&amount=%s&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		g.accessKey, amount, req.ExtraData, g.ipnURL, req.OrderID, req.OrderInfo,
		g.partnerCode, g.redirectURL, req.RequestID, "captureWallet")

	body := map[string]interface{}{
		"partnerCode": g.partnerCode,
		"accessKey":   g.accessKey,
		"requestId":   req.RequestID,
		"amount":      amount,
		"orderId":     req.OrderID,
		"orderInfo":   req.OrderInfo,
		"redirectUrl": g.redirectURL,
		"ipnUrl":      g.ipnURL,
		"extraData":   req.ExtraData,
		"requestType": "captureWallet",
		"lang":        "vi",
		"signature":   g.sign(raw),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode create-payment request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ExternalServiceError{Service: "momo", Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &ExternalServiceError{
			Service: "momo",
			Err:     fmt.Errorf("create endpoint returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var result CreatePaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ExternalServiceError{Service: "momo", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if result.ResultCode != 0 {
		return nil, &ExternalServiceError{
			Service: "momo",
			Err:     fmt.Errorf("create rejected with code %d: %s", result.ResultCode, result.Message),
		}
	}

	return &result, nil
}

// VerifyCallback recomputes the IPN signature and compares it in constant
// time. A mismatch rejects the callback outright.
func (g *MomoGateway) VerifyCallback(cb *MomoCallback) error {
	expected := g.sign(CallbackSignatureMaterial(g.accessKey, cb))
	if !hmac.Equal([]byte(expected), []byte(cb.Signature)) {
		return &SignatureError{Message: "callback signature verification failed"}
	}
	return nil
}

// SignCallback computes a valid signature for the callback (used by tests to
// fabricate gateway deliveries)
func (g *MomoGateway) SignCallback(cb *MomoCallback) string {
	return g.sign(CallbackSignatureMaterial(g.accessKey, cb))
}

// CallbackSignatureMaterial builds the raw IPN signature string per MoMo's
// v2 spec: alphabetical key order, access key first
func CallbackSignatureMaterial(accessKey string, cb *MomoCallback) string {
	return fmt.Sprintf("accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		accessKey, formatAmount(cb.Amount), cb.ExtraData, cb.Message, cb.OrderID, cb.OrderInfo,
		cb.OrderType, cb.PartnerCode, cb.PayType, cb.RequestID, cb.ResponseTime, cb.ResultCode, cb.TransID)
}

func (g *MomoGateway) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(g.secretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// formatAmount renders a VND amount the way it appears on the wire: integral
// amounts without a decimal point
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
