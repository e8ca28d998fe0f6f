package service

import (
	"context"
	"errors"
	"time"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	r "github.com/Parthsawant1298/webhackathon-sub001/internal/repository"
)

// CommitResult is the tagged outcome of a stock commit. Exactly one of the
// two shapes comes back without error: a committed order with its stock
// updates, or Aborted with the conflict that stopped it. The caller is
// responsible for the compensating mark-failed write after an abort; the
// transaction itself stays pure.
type CommitResult struct {
	Order        *domain.Order
	StockUpdates []domain.StockUpdate
	Aborted      bool
	Reason       error
}

// StockCommitter flips a pending order into its paid state while decrementing
// stock for every line, all inside one atomic transaction. Two concurrent
// commits racing for the last units are decided by the storage layer's
// conditional decrement, not by any lock taken here.
type StockCommitter struct {
	runner r.TxnRunner
	stocks r.StockStore
	orders r.OrderRepository
}

func NewStockCommitter(runner r.TxnRunner, stocks r.StockStore, orders r.OrderRepository) *StockCommitter {
	return &StockCommitter{runner: runner, stocks: stocks, orders: orders}
}

// Commit runs the transaction. Stock conflicts abort it and come back inside
// the result; infrastructure failures (commit timeout, session errors) come
// back as a *FatalError because the gateway may already have captured funds.
func (c *StockCommitter) Commit(ctx context.Context, order *domain.Order, gatewayPaymentID, gatewaySignature string) (*CommitResult, error) {
	paidAt := time.Now()

	result, err := c.runner.WithTransaction(ctx, func(txCtx context.Context) (interface{}, error) {
		// Lines are processed in the order they appear on the order document.
		updates := make([]domain.StockUpdate, 0, len(order.Items))
		for _, line := range order.Items {
			updated, ok, decErr := c.stocks.DecrementIfAvailable(txCtx, line.ItemID, line.Quantity)
			if decErr != nil {
				return nil, decErr
			}
			if !ok {
				return nil, c.classifyMiss(txCtx, line)
			}
			updates = append(updates, domain.StockUpdate{
				ItemID:    line.ItemID,
				Quantity:  line.Quantity,
				Remaining: updated.Quantity,
			})
		}

		if err := c.orders.MarkPaid(txCtx, order.ID, gatewayPaymentID, gatewaySignature, paidAt); err != nil {
			return nil, err
		}
		return updates, nil
	})

	if err != nil {
		if IsStockConflict(err) {
			return &CommitResult{Aborted: true, Reason: err}, nil
		}
		return nil, &FatalError{Op: "stock commit for order " + order.ID, Err: err}
	}

	committed := *order
	committed.Status = domain.OrderStatusProcessing
	committed.PaymentStatus = domain.PaymentStatusCompleted
	committed.PaymentInfo.GatewayPaymentID = gatewayPaymentID
	committed.PaymentInfo.GatewaySignature = gatewaySignature
	committed.ProcessedAt = &paidAt

	return &CommitResult{
		Order:        &committed,
		StockUpdates: result.([]domain.StockUpdate),
	}, nil
}

// classifyMiss re-reads the item outside the conditional mask to explain why
// the decrement found no matching document.
func (c *StockCommitter) classifyMiss(ctx context.Context, line domain.OrderItem) error {
	item, err := c.stocks.GetItem(ctx, line.ItemID)
	if err != nil {
		if errors.Is(err, r.ErrStockItemNotFound) {
			return &ItemGoneError{ItemID: line.ItemID}
		}
		return err
	}
	if !item.IsActive {
		return &ItemInactiveError{ItemID: line.ItemID, Name: item.Name}
	}
	return &InsufficientStockError{
		ItemID:    line.ItemID,
		Name:      item.Name,
		Available: item.Quantity,
		Requested: line.Quantity,
	}
}
