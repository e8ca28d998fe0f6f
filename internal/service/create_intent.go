package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/gateway"
	r "github.com/Parthsawant1298/webhackathon-sub001/internal/repository"
	"github.com/google/uuid"
)

// IntentResult is returned to the caller so the client can hand the gateway
// intent to the payment widget.
type IntentResult struct {
	Order  *domain.Order   `json:"order"`
	Intent *gateway.Intent `json:"gateway_intent"`
}

// CreatePaymentIntent validates the buyer's cart against current stock,
// persists a pending order priced from the current catalog and opens a
// payment intent with the gateway for the recomputed total.
//
// The order starts as payment_failed/pending. Nothing optimistic is recorded
// before the gateway confirms payment.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, userID string, shipping domain.ShippingInfo) (*IntentResult, error) {
	if err := shipping.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.getCart(ctx, userID)
	if err != nil {
		if errors.Is(err, r.ErrCartNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	valid, conflicts, err := s.checkAvailability(ctx, userID, cart)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	// Price from the current catalog, not from anything cached on the cart.
	// The prices written here become the order's immutable snapshot.
	items := make([]domain.OrderItem, 0, len(valid))
	var totalAmount float64
	for _, line := range valid {
		items = append(items, domain.OrderItem{
			ItemID:    line.Stock.ID,
			Name:      line.Stock.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Stock.Price,
		})
		totalAmount += line.Stock.Price * float64(line.Quantity)
	}

	order := &domain.Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		Items:         items,
		TotalAmount:   totalAmount,
		Status:        domain.OrderStatusPaymentFailed,
		PaymentStatus: domain.PaymentStatusPending,
		Shipping:      shipping,
		CreatedAt:     time.Now(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	intent, err := s.gateway.CreateIntent(ctx, totalAmount, s.currency, order.ID)
	if err != nil {
		// The pending order stays behind as an audit record of the attempt.
		return nil, fmt.Errorf("failed to open payment intent for order %s: %w", order.ID, err)
	}

	if err := s.orders.AttachGatewayOrder(ctx, order.ID, intent.ID); err != nil {
		return nil, fmt.Errorf("failed to store gateway order id: %w", err)
	}
	order.PaymentInfo.GatewayOrderID = intent.ID

	log.Printf("payment intent %s opened for order %s amount %.2f %s", intent.ID, order.ID, totalAmount, s.currency)
	return &IntentResult{Order: order, Intent: intent}, nil
}
