package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	r "github.com/Parthsawant1298/webhackathon-sub001/internal/repository"
)

// validLine is a cart line that passed the availability check, paired with
// the stock record it was checked against so the caller can price it without
// a second read.
type validLine struct {
	Stock    *domain.StockItem
	Quantity int
}

// checkAvailability re-fetches the authoritative stock record for every cart
// line. A line is valid iff the item is active and holds at least the
// requested quantity. Conflicted lines are pruned from the cart so the
// buyer's next attempt reflects reality.
//
// This check is advisory: stock can change between here and payment
// completion, so the committer re-validates inside the transaction.
func (s *CheckoutService) checkAvailability(ctx context.Context, userID string, cart *domain.Cart) ([]validLine, []domain.AvailabilityConflict, error) {
	valid := make([]validLine, 0, len(cart.Items))
	var conflicts []domain.AvailabilityConflict

	for _, line := range cart.Items {
		stock, err := s.committer.stocks.GetItem(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, r.ErrStockItemNotFound) {
				conflicts = append(conflicts, domain.AvailabilityConflict{
					ItemID:    line.ItemID,
					Requested: line.Quantity,
					Reason:    domain.ConflictItemGone,
				})
				continue
			}
			return nil, nil, fmt.Errorf("failed to check stock for %s: %w", line.ItemID, err)
		}

		switch {
		case !stock.IsActive:
			conflicts = append(conflicts, domain.AvailabilityConflict{
				ItemID:    line.ItemID,
				Name:      stock.Name,
				Requested: line.Quantity,
				Available: stock.Quantity,
				Reason:    domain.ConflictItemInactive,
			})
		case stock.Quantity < line.Quantity:
			conflicts = append(conflicts, domain.AvailabilityConflict{
				ItemID:    line.ItemID,
				Name:      stock.Name,
				Requested: line.Quantity,
				Available: stock.Quantity,
				Reason:    domain.ConflictInsufficientStock,
			})
		default:
			valid = append(valid, validLine{Stock: stock, Quantity: line.Quantity})
		}
	}

	if len(conflicts) > 0 {
		ids := make([]string, len(conflicts))
		for i, c := range conflicts {
			ids[i] = c.ItemID
		}
		if err := s.carts.RemoveItems(ctx, userID, ids); err != nil {
			return nil, nil, fmt.Errorf("failed to prune conflicted cart items: %w", err)
		}
		s.invalidateCart(ctx, userID)
	}

	return valid, conflicts, nil
}
