// Package razorpay implements the payment gateway against the Razorpay Orders
// API and its HMAC-SHA256 signature scheme.
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/Prathap331/GB-Backend/internal/payment"
)

// DefaultBaseURL is the production Razorpay API endpoint.
const DefaultBaseURL = "https://api.razorpay.com"

var _ payment.Gateway = (*Client)(nil)

// Client calls the Razorpay REST API with basic auth. All requests are
// bounded by the configured timeout.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
}

// Config holds Razorpay credentials and client tuning.
type Config struct {
	KeyID     string
	KeySecret string
	// BaseURL overrides the API endpoint; empty means DefaultBaseURL.
	BaseURL string
	// Timeout bounds each API call; zero means 10s.
	Timeout time.Duration
}

// New creates a Client from the given config.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   baseURL,
		http:      &http.Client{Timeout: timeout},
	}
}

// KeyID returns the publishable key id.
func (c *Client) KeyID() string { return c.keyID }

type createOrderBody struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder opens a gateway order for the given amount in paise.
func (c *Client) CreateOrder(ctx context.Context, req payment.OrderRequest) (string, error) {
	body, err := json.Marshal(createOrderBody{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal order request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "call gateway")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Wrap(err, "read gateway response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			return "", errors.Errorf("gateway order create failed: %s (%s)", apiErr.Error.Description, apiErr.Error.Code)
		}
		return "", errors.Errorf("gateway order create failed: status %d", resp.StatusCode)
	}

	var out createOrderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", errors.Wrap(err, "decode gateway response")
	}
	if out.ID == "" {
		return "", errors.New("gateway response missing order id")
	}
	return out.ID, nil
}

// VerifySignature checks signature == hex(HMAC-SHA256(secret, orderID + "|" +
// paymentID)) in constant time.
func (c *Client) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return payment.ErrInvalidSignature
	}
	return nil
}
