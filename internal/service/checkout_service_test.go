package service

import (
	"context"
	"testing"
	"time"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	r "github.com/Parthsawant1298/webhackathon-sub001/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-webhook-secret"

type fixture struct {
	svc    *CheckoutService
	orders *MockOrderRepository
	carts  *MockCartRepository
	stock  *r.MemoryStockStore
	gw     *MockGateway
	mail   *MockEmailSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stock := r.NewMemoryStockStore()
	runner := r.NewMemoryTxnRunner(stock)
	orders := NewMockOrderRepository()
	carts := NewMockCartRepository()
	gw := &MockGateway{}
	mail := &MockEmailSender{}

	svc := NewCheckoutService(orders, carts, nil, stock, runner, gw, NewSignatureVerifier(testSecret), mail)
	svc.dispatcher.baseDelay = time.Millisecond

	return &fixture{svc: svc, orders: orders, carts: carts, stock: stock, gw: gw, mail: mail}
}

func (f *fixture) seedStock(t *testing.T, id, name string, price float64, qty int, active bool) {
	t.Helper()
	err := f.stock.UpsertItem(context.Background(), &domain.StockItem{
		ID: id, Name: name, Price: price, Quantity: qty, IsActive: active,
	})
	require.NoError(t, err)
}

func testShipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		Name:       "Asha Rao",
		Address:    "12 MG Road",
		City:       "Bengaluru",
		PostalCode: "560001",
		Phone:      "9876543210",
		Email:      "asha@example.com",
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.GetOrder(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, order)
}

func TestGetOrder_Found(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orders.Create(context.Background(), &domain.Order{ID: "order-1", UserID: "u1"}))

	order, err := f.svc.GetOrder(context.Background(), "order-1")

	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
}
