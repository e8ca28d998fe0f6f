package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/email"
)

const (
	emailMaxAttempts = 3
	emailBaseDelay   = 500 * time.Millisecond
)

// Dispatcher runs the post-commit side effects: the receipt email and the
// cart clear. Both are best-effort; a failure in either is logged and
// isolated from the other and from the committed order.
type Dispatcher struct {
	mail        email.Sender
	clearCart   func(ctx context.Context, userID string) error
	maxAttempts int
	baseDelay   time.Duration
}

func NewDispatcher(mail email.Sender, clearCart func(ctx context.Context, userID string) error) *Dispatcher {
	return &Dispatcher{
		mail:        mail,
		clearCart:   clearCart,
		maxAttempts: emailMaxAttempts,
		baseDelay:   emailBaseDelay,
	}
}

// Dispatch must only be called after the stock commit is durable.
func (d *Dispatcher) Dispatch(ctx context.Context, order *domain.Order) {
	d.sendReceipt(ctx, order)

	if err := d.clearCart(ctx, order.UserID); err != nil {
		log.Printf("failed to clear cart for user %s after order %s: %v", order.UserID, order.ID, err)
	}
}

// sendReceipt retries a bounded number of times with exponential backoff.
// Exhausting the retries is logged and otherwise ignored.
func (d *Dispatcher) sendReceipt(ctx context.Context, order *domain.Order) {
	if order.Shipping.Email == "" {
		log.Printf("no email on order %s, skipping receipt", order.ID)
		return
	}

	subject := fmt.Sprintf("Order confirmation %s", order.ID)
	body := renderReceipt(order)

	delay := d.baseDelay
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.mail.Send(ctx, order.Shipping.Email, subject, body)
		if err == nil {
			return
		}
		log.Printf("receipt email for order %s failed (attempt %d/%d): %v", order.ID, attempt, d.maxAttempts, err)
		if attempt < d.maxAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	log.Printf("giving up on receipt email for order %s after %d attempts", order.ID, d.maxAttempts)
}

func renderReceipt(order *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Thanks for your order, %s!</h2>", order.Shipping.Name)
	fmt.Fprintf(&b, "<p>Order <strong>%s</strong> is confirmed and being processed.</p>", order.ID)
	b.WriteString("<ul>")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<li>%s &times; %d @ %.2f</li>", item.Name, item.Quantity, item.UnitPrice)
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, "<p>Total: <strong>%.2f</strong></p>", order.TotalAmount)
	fmt.Fprintf(&b, "<p>Shipping to: %s, %s, %s %s</p>",
		order.Shipping.Name, order.Shipping.Address, order.Shipping.City, order.Shipping.PostalCode)
	return b.String()
}
