package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrStockItemNotFound = errors.New("stock item not found")

// StockStore defines the stock operations used during checkout. During a
// payment confirmation all mutation goes through DecrementIfAvailable; no
// other code path writes quantity directly.
type StockStore interface {
	GetItem(ctx context.Context, itemID string) (*domain.StockItem, error)
	// DecrementIfAvailable atomically subtracts qty from the item's quantity,
	// but only if the item is active and holds at least qty units. It returns
	// the updated record and ok=false (without error) when the condition did
	// not hold, so callers can re-read and classify the miss.
	DecrementIfAvailable(ctx context.Context, itemID string, qty int) (*domain.StockItem, bool, error)
	// Restore adds quantities back. Reserved for explicitly-invoked
	// refund/reversal flows; the confirmation failure path relies on the
	// transaction abort instead.
	Restore(ctx context.Context, items []domain.OrderItem) error
	UpsertItem(ctx context.Context, item *domain.StockItem) error
}

type mongoStockStore struct {
	collection *mongo.Collection
}

func NewMongoStockStore(db *mongo.Database) StockStore {
	return &mongoStockStore{collection: db.Collection("stocks")}
}

func (m *mongoStockStore) GetItem(ctx context.Context, itemID string) (*domain.StockItem, error) {
	var item domain.StockItem
	err := m.collection.FindOne(ctx, bson.M{"_id": itemID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStockItemNotFound
		}
		return nil, fmt.Errorf("failed to get stock item: %w", err)
	}
	return &item, nil
}

func (m *mongoStockStore) DecrementIfAvailable(ctx context.Context, itemID string, qty int) (*domain.StockItem, bool, error) {
	filter := bson.M{
		"_id":       itemID,
		"is_active": true,
		"quantity":  bson.M{"$gte": qty},
	}
	update := bson.M{"$inc": bson.M{"quantity": -qty}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.StockItem
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// No matching document: inactive, gone or not enough units.
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to decrement stock for %s: %w", itemID, err)
	}
	return &updated, true, nil
}

func (m *mongoStockStore) Restore(ctx context.Context, items []domain.OrderItem) error {
	for _, item := range items {
		_, err := m.collection.UpdateOne(ctx,
			bson.M{"_id": item.ItemID},
			bson.M{"$inc": bson.M{"quantity": item.Quantity}})
		if err != nil {
			return fmt.Errorf("failed to restore stock for %s: %w", item.ItemID, err)
		}
	}
	return nil
}

func (m *mongoStockStore) UpsertItem(ctx context.Context, item *domain.StockItem) error {
	filter := bson.M{"_id": item.ID}
	update := bson.M{"$set": item}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert stock item: %w", err)
	}
	return nil
}
