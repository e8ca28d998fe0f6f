// Package gateway talks to the external payment provider. Only intent
// creation goes out from here; payment confirmations come back in through the
// signed webhook handled by internal/http.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

// ErrNotConfigured means the gateway credentials are missing. This is an
// operator problem, not a user one, and callers surface it as such.
var ErrNotConfigured = errors.New("payment gateway credentials not configured")

// Intent is the gateway-side order opened for one checkout attempt.
type Intent struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount float64, currency, receipt string) (*Intent, error)
}

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
}

type Client struct {
	http      *resty.Client
	breaker   *gobreaker.CircuitBreaker[*Intent]
	keyID     string
	keySecret string
}

func NewClient(cfg Config) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	breaker := gobreaker.NewCircuitBreaker[*Intent](gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		http:      http,
		breaker:   breaker,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
	}
}

type intentRequest struct {
	Amount   int64  `json:"amount"` // smallest currency unit
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type intentResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

func (c *Client) CreateIntent(ctx context.Context, amount float64, currency, receipt string) (*Intent, error) {
	if c.keyID == "" || c.keySecret == "" {
		return nil, ErrNotConfigured
	}

	return c.breaker.Execute(func() (*Intent, error) {
		var result intentResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBasicAuth(c.keyID, c.keySecret).
			SetBody(intentRequest{
				Amount:   int64(math.Round(amount * 100)),
				Currency: currency,
				Receipt:  receipt,
			}).
			SetResult(&result).
			Post("/v1/orders")
		if err != nil {
			return nil, fmt.Errorf("gateway request failed: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("gateway returned %s", resp.Status())
		}

		return &Intent{
			ID:       result.ID,
			Amount:   float64(result.Amount) / 100,
			Currency: result.Currency,
		}, nil
	})
}
