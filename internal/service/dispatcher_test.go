package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func committedOrder() *domain.Order {
	return &domain.Order{
		ID:     "order-1",
		UserID: "u1",
		Items: []domain.OrderItem{
			{ItemID: "item-a", Name: "Widget", Quantity: 2, UnitPrice: 25},
		},
		TotalAmount:   50,
		Status:        domain.OrderStatusProcessing,
		PaymentStatus: domain.PaymentStatusCompleted,
		Shipping:      testShipping(),
	}
}

func newTestDispatcher(mail *MockEmailSender, clearErr error, cleared *int) *Dispatcher {
	d := NewDispatcher(mail, func(ctx context.Context, userID string) error {
		if clearErr != nil {
			return clearErr
		}
		*cleared++
		return nil
	})
	d.baseDelay = time.Millisecond
	return d
}

func TestDispatch_EmailRetriesThenSucceeds(t *testing.T) {
	mail := &MockEmailSender{FailFirst: 2}
	var cleared int
	d := newTestDispatcher(mail, nil, &cleared)

	d.Dispatch(context.Background(), committedOrder())

	assert.Equal(t, 3, mail.Attempts)
	require.Len(t, mail.Sent, 1)
	assert.Equal(t, 1, cleared)
}

func TestDispatch_EmailExhaustsRetries(t *testing.T) {
	mail := &MockEmailSender{Err: errors.New("provider down")}
	var cleared int
	d := newTestDispatcher(mail, nil, &cleared)

	d.Dispatch(context.Background(), committedOrder())

	// Bounded retries, then give up; the cart clear still runs.
	assert.Equal(t, emailMaxAttempts, mail.Attempts)
	assert.Empty(t, mail.Sent)
	assert.Equal(t, 1, cleared)
}

func TestDispatch_CartClearFailureIsIsolated(t *testing.T) {
	mail := &MockEmailSender{}
	var cleared int
	d := newTestDispatcher(mail, errors.New("mongo down"), &cleared)

	d.Dispatch(context.Background(), committedOrder())

	// The email still went out; the clear failure is only logged.
	require.Len(t, mail.Sent, 1)
	assert.Zero(t, cleared)
}

func TestDispatch_NoEmailAddressSkipsReceipt(t *testing.T) {
	mail := &MockEmailSender{}
	var cleared int
	d := newTestDispatcher(mail, nil, &cleared)

	order := committedOrder()
	order.Shipping.Email = ""
	d.Dispatch(context.Background(), order)

	assert.Zero(t, mail.Attempts)
	assert.Equal(t, 1, cleared)
}
