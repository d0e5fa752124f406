package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amainooti/Zakat-foundation/internal/config"
	"go.uber.org/zap"
)

var (
	ErrInvalidPayload = errors.New("invalid_payload")
	ErrMissingSecret  = errors.New("paystack secret key is required")
)

// UpstreamError carries the gateway's own failure message back to the
// caller. Checkout writes no state before the gateway call, so these
// are always safe to retry client-side.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return "paystack request failed"
	}
	return e.Message
}

// Client is a thin wrapper around the Paystack REST API.
// Docs: https://paystack.com/docs/api
type Client struct {
	secretKey string
	baseURL   string
	http      *http.Client
	log       *zap.Logger
}

func NewClient(cfg config.PaystackConfig, log *zap.Logger) (*Client, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Client{
		secretKey: secret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		log:       log.Named("paystack.client"),
	}, nil
}

// InitializeRequest starts a transaction. Amount is in the smallest
// settlement-currency unit (kobo). Metadata round-trips the original
// donor-facing amount and currency because the gateway only reports
// settlement amounts on the webhook.
type InitializeRequest struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Currency    string         `json:"currency,omitempty"`
	Reference   string         `json:"reference,omitempty"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Plan        string         `json:"plan,omitempty"`
	Channels    []string       `json:"channels,omitempty"`
	Metadata    ChargeMetadata `json:"metadata,omitempty"`
}

type Transaction struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifiedTransaction struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Customer  Customer        `json:"customer"`
	Metadata  json.RawMessage `json:"metadata"`
	Plan      string          `json:"plan"`
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize creates a transaction and returns the hosted checkout URL.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*Transaction, error) {
	var tx Transaction
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// VerifyTransaction fetches a transaction by reference, used for manual
// reconciliation of deliveries the webhook missed.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifiedTransaction, error) {
	var tx VerifiedTransaction
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := c.do(ctx, http.MethodGet, path, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &UpstreamError{Message: fmt.Sprintf("paystack error: %d", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Status {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = fmt.Sprintf("paystack error: %d", resp.StatusCode)
		}
		c.log.Warn("paystack request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &UpstreamError{Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &UpstreamError{Message: "paystack returned an unexpected response"}
	}
	return nil
}
