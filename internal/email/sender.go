// Package email sends transactional mail through an HTTP mail provider.
// Delivery here is an observability concern: a lost receipt never changes an
// order's committed state.
package email

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type Config struct {
	BaseURL  string
	APIKey   string
	From     string
	MockMode bool
}

type Client struct {
	http     *resty.Client
	apiKey   string
	from     string
	mockMode bool
}

func NewClient(cfg Config) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:     http,
		apiKey:   cfg.APIKey,
		from:     cfg.From,
		mockMode: cfg.MockMode,
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) error {
	if c.mockMode {
		log.Printf("email mock send message_id=%s to=%s subject=%q", uuid.New().String(), to, subject)
		return nil
	}

	if c.apiKey == "" {
		return fmt.Errorf("email api key not configured")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(sendRequest{
			From:    c.from,
			To:      to,
			Subject: subject,
			HTML:    htmlBody,
		}).
		Post("/v3/mail/send")
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("email provider returned %s", resp.Status())
	}
	return nil
}
