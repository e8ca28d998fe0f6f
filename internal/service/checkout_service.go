package service

import (
	"context"
	"errors"
	"log"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/cache"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/email"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/gateway"
	r "github.com/Parthsawant1298/webhackathon-sub001/internal/repository"
)

// CheckoutService runs the payment-confirmation pipeline: availability
// precheck, payment-intent creation, signature verification, the transactional
// stock commit and the post-commit side effects.
type CheckoutService struct {
	orders     r.OrderRepository
	carts      r.CartRepository
	cartCache  cache.CartCache
	gateway    gateway.PaymentGateway
	verifier   *SignatureVerifier
	committer  *StockCommitter
	dispatcher *Dispatcher
	currency   string
}

func NewCheckoutService(
	orders r.OrderRepository,
	carts r.CartRepository,
	cartCache cache.CartCache,
	stocks r.StockStore,
	runner r.TxnRunner,
	gw gateway.PaymentGateway,
	verifier *SignatureVerifier,
	mail email.Sender,
) *CheckoutService {
	s := &CheckoutService{
		orders:    orders,
		carts:     carts,
		cartCache: cartCache,
		gateway:   gw,
		verifier:  verifier,
		currency:  "INR",
	}
	s.committer = NewStockCommitter(runner, stocks, orders)
	s.dispatcher = NewDispatcher(mail, s.clearCart)
	return s
}

// GetOrder reads one order by id. Orders are never deleted, so this also
// serves historical/audit lookups.
func (s *CheckoutService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, r.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// getCart reads the buyer's cart through the cache. A cache failure is never
// fatal; the repository stays authoritative.
func (s *CheckoutService) getCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if s.cartCache != nil {
		cart, err := s.cartCache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cart cache read failed for user %s: %v", userID, err)
		}
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cartCache != nil {
		if err := s.cartCache.Set(ctx, userID, cart); err != nil {
			log.Printf("cart cache write failed for user %s: %v", userID, err)
		}
	}
	return cart, nil
}

func (s *CheckoutService) clearCart(ctx context.Context, userID string) error {
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		return err
	}
	s.invalidateCart(ctx, userID)
	return nil
}

func (s *CheckoutService) invalidateCart(ctx context.Context, userID string) {
	if s.cartCache == nil {
		return
	}
	if err := s.cartCache.Delete(ctx, userID); err != nil {
		log.Printf("cart cache invalidation failed for user %s: %v", userID, err)
	}
}
