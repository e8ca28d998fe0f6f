package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/gateway"
	r "github.com/Parthsawant1298/webhackathon-sub001/internal/repository"
)

// MockOrderRepository implements r.OrderRepository with an in-memory map so
// tests can observe status transitions.
type MockOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*domain.Order

	CreateErr     error
	MarkFailedErr error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[string]*domain.Order)}
}

func (m *MockOrderRepository) Create(_ context.Context, order *domain.Order) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *MockOrderRepository) GetByID(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, r.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *MockOrderRepository) GetByGatewayOrderID(_ context.Context, gatewayOrderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.orders {
		if order.PaymentInfo.GatewayOrderID == gatewayOrderID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, r.ErrOrderNotFound
}

func (m *MockOrderRepository) AttachGatewayOrder(_ context.Context, orderID, gatewayOrderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return r.ErrOrderNotFound
	}
	order.PaymentInfo.GatewayOrderID = gatewayOrderID
	return nil
}

func (m *MockOrderRepository) MarkPaid(_ context.Context, orderID, gatewayPaymentID, gatewaySignature string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return r.ErrOrderNotFound
	}
	order.Status = domain.OrderStatusProcessing
	order.PaymentStatus = domain.PaymentStatusCompleted
	order.PaymentInfo.GatewayPaymentID = gatewayPaymentID
	order.PaymentInfo.GatewaySignature = gatewaySignature
	order.ProcessedAt = &at
	return nil
}

func (m *MockOrderRepository) MarkFailed(_ context.Context, orderID, reason string, at time.Time) error {
	if m.MarkFailedErr != nil {
		return m.MarkFailedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return r.ErrOrderNotFound
	}
	order.Status = domain.OrderStatusPaymentFailed
	order.PaymentStatus = domain.PaymentStatusFailed
	order.FailureReason = reason
	order.FailedAt = &at
	return nil
}

// MockCartRepository implements r.CartRepository.
type MockCartRepository struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart

	RemoveErr error
	ClearErr  error
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{carts: make(map[string]*domain.Cart)}
}

func (m *MockCartRepository) SetCart(userID string, items []domain.CartItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = &domain.Cart{UserID: userID, Items: items}
}

func (m *MockCartRepository) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return nil, r.ErrCartNotFound
	}
	copied := *cart
	copied.Items = append([]domain.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (m *MockCartRepository) RemoveItems(_ context.Context, userID string, itemIDs []string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return r.ErrCartNotFound
	}
	drop := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		drop[id] = true
	}
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if !drop[item.ItemID] {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return nil
}

func (m *MockCartRepository) ClearCart(_ context.Context, userID string) error {
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return r.ErrCartNotFound
	}
	cart.Items = nil
	return nil
}

// MockGateway implements gateway.PaymentGateway and records the amounts it
// was asked to open intents for.
type MockGateway struct {
	mu      sync.Mutex
	Intents []gateway.Intent
	Amounts []float64
	Err     error
}

func (m *MockGateway) CreateIntent(_ context.Context, amount float64, currency, receipt string) (*gateway.Intent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	intent := gateway.Intent{
		ID:       "gw_order_" + receipt,
		Amount:   amount,
		Currency: currency,
	}
	m.Intents = append(m.Intents, intent)
	m.Amounts = append(m.Amounts, amount)
	return &intent, nil
}

// MockEmailSender implements email.Sender. FailFirst makes the first n Send
// calls fail so retry behavior can be observed.
type MockEmailSender struct {
	mu        sync.Mutex
	Sent      []string
	Attempts  int
	FailFirst int
	Err       error
}

func (m *MockEmailSender) Send(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attempts++
	if m.Err != nil {
		return m.Err
	}
	if m.Attempts <= m.FailFirst {
		return errFailedSend
	}
	m.Sent = append(m.Sent, to)
	return nil
}

var errFailedSend = &tempSendError{}

type tempSendError struct{}

func (*tempSendError) Error() string { return "send failed" }

// testSignature computes a valid callback signature the way the gateway does.
func testSignature(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
