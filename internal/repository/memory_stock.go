package repository

import (
	"context"
	"sync"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
)

// MemoryStockStore implements StockStore with in-memory storage. It backs
// local development and the concurrency tests; production runs against the
// MongoDB store.
type MemoryStockStore struct {
	mu    sync.RWMutex
	items map[string]*domain.StockItem
}

func NewMemoryStockStore() *MemoryStockStore {
	return &MemoryStockStore{items: make(map[string]*domain.StockItem)}
}

func (s *MemoryStockStore) GetItem(_ context.Context, itemID string) (*domain.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[itemID]
	if !exists {
		return nil, ErrStockItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *MemoryStockStore) DecrementIfAvailable(_ context.Context, itemID string, qty int) (*domain.StockItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[itemID]
	if !exists || !item.IsActive || item.Quantity < qty {
		return nil, false, nil
	}
	item.Quantity -= qty
	copied := *item
	return &copied, true, nil
}

func (s *MemoryStockStore) Restore(_ context.Context, items []domain.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range items {
		if item, exists := s.items[line.ItemID]; exists {
			item.Quantity += line.Quantity
		}
	}
	return nil
}

func (s *MemoryStockStore) UpsertItem(_ context.Context, item *domain.StockItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *item
	s.items[item.ID] = &copied
	return nil
}

// Snapshot returns a deep copy of the current stock state.
func (s *MemoryStockStore) Snapshot() map[string]domain.StockItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]domain.StockItem, len(s.items))
	for id, item := range s.items {
		snap[id] = *item
	}
	return snap
}

// RestoreSnapshot replaces the stock state with a previously taken snapshot.
func (s *MemoryStockStore) RestoreSnapshot(snap map[string]domain.StockItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*domain.StockItem, len(snap))
	for id, item := range snap {
		copied := item
		s.items[id] = &copied
	}
}

// MemoryTxnRunner gives the in-memory store all-or-nothing semantics: it
// serializes transactions and undoes stock writes when fn fails, mirroring
// what a MongoDB transaction abort does for the real store.
type MemoryTxnRunner struct {
	mu    sync.Mutex
	stock *MemoryStockStore
}

func NewMemoryTxnRunner(stock *MemoryStockStore) *MemoryTxnRunner {
	return &MemoryTxnRunner{stock: stock}
}

func (r *MemoryTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.stock.Snapshot()
	result, err := fn(ctx)
	if err != nil {
		r.stock.RestoreSnapshot(snap)
		return nil, err
	}
	return result, nil
}
