package service

import (
	"errors"
	"fmt"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
)

var (
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrInvalidSignature = errors.New("payment verification failed")
	ErrOrderNotFound    = errors.New("order not found")
)

// ConflictError carries every availability conflict found in one pass, so
// the client can resolve all of them in a single round trip.
type ConflictError struct {
	Conflicts []domain.AvailabilityConflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d cart item(s) are unavailable", len(e.Conflicts))
}

// InsufficientStockError aborts a stock commit when an item holds fewer units
// than the order line requests. Retryable: the buyer can lower the quantity.
type InsufficientStockError struct {
	ItemID    string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ItemID, e.Requested, e.Available)
}

// ItemGoneError means the item was deleted from the catalog between order
// creation and payment confirmation.
type ItemGoneError struct {
	ItemID string
}

func (e *ItemGoneError) Error() string {
	return fmt.Sprintf("item %s no longer exists", e.ItemID)
}

// ItemInactiveError means the item was deactivated after order creation.
type ItemInactiveError struct {
	ItemID string
	Name   string
}

func (e *ItemInactiveError) Error() string {
	return fmt.Sprintf("item %s is no longer available for sale", e.ItemID)
}

// FatalError wraps transaction-infrastructure failures (commit timeout,
// session errors). The payment may have been captured by the gateway even
// though no order committed, so this class is never reported as success and
// always reaches the operator log.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s failed, payment state uncertain: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsStockConflict reports whether err is one of the user-facing, retryable
// stock failures that abort a commit.
func IsStockConflict(err error) bool {
	var insufficient *InsufficientStockError
	var gone *ItemGoneError
	var inactive *ItemInactiveError
	return errors.As(err, &insufficient) || errors.As(err, &gone) || errors.As(err, &inactive)
}
