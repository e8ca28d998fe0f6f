package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	r "github.com/Parthsawant1298/webhackathon-sub001/internal/repository"
)

// ConfirmRequest is the strict shape of a gateway callback. All three fields
// must be present before verification is even attempted.
type ConfirmRequest struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature"`
}

type ConfirmResult struct {
	Order        *domain.Order        `json:"order"`
	StockUpdates []domain.StockUpdate `json:"stock_updates"`
}

// ConfirmPayment is the authoritative commit path: verify the callback
// signature, short-circuit duplicates, run the transactional stock commit,
// and only then fire the best-effort side effects.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	// Verification runs before the order is even looked up, so callers that
	// fail it learn nothing about which orders exist.
	if !s.verifier.Verify(req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature) {
		return nil, ErrInvalidSignature
	}

	order, err := s.orders.GetByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		if errors.Is(err, r.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}

	// Idempotency guard: a committed order is returned as-is. No second
	// decrement, no second email.
	if order.IsCommitted() {
		log.Printf("duplicate confirmation for order %s (gateway order %s), returning committed result", order.ID, req.GatewayOrderID)
		return &ConfirmResult{Order: order}, nil
	}

	result, err := s.committer.Commit(ctx, order, req.GatewayPaymentID, req.GatewaySignature)
	if err != nil {
		// Class (e): money may have moved without a committed order. Always
		// operator-visible, never reported as success.
		log.Printf("FATAL: %v", err)
		return nil, err
	}

	if result.Aborted {
		// Compensating write, issued after the abort. Inside the transaction
		// the abort would have erased it.
		if markErr := s.orders.MarkFailed(ctx, order.ID, result.Reason.Error(), time.Now()); markErr != nil {
			log.Printf("failed to mark order %s failed after abort: %v", order.ID, markErr)
		}
		return nil, result.Reason
	}

	log.Printf("order %s committed with payment %s", order.ID, req.GatewayPaymentID)

	// Side effects run strictly after the durable commit and never change
	// the outcome above.
	s.dispatcher.Dispatch(ctx, result.Order)

	return &ConfirmResult{
		Order:        result.Order,
		StockUpdates: result.StockUpdates,
	}, nil
}
