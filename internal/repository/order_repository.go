package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the order persistence operations the checkout
// service needs. Consumers define this interface, not the MongoDB
// implementation.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error)
	AttachGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error
	// MarkPaid flips the order into its committed state. Called inside the
	// stock-commit transaction.
	MarkPaid(ctx context.Context, orderID, gatewayPaymentID, gatewaySignature string, at time.Time) error
	// MarkFailed is the compensating write issued after a transaction abort.
	// It must run outside the aborted transaction or the abort would erase it.
	MarkFailed(ctx context.Context, orderID, reason string, at time.Time) error
}

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{collection: db.Collection("orders")}
}

func (m *mongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if _, err := m.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (m *mongoOrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.findOne(ctx, bson.M{"_id": orderID})
}

func (m *mongoOrderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error) {
	return m.findOne(ctx, bson.M{"payment_info.gateway_order_id": gatewayOrderID})
}

func (m *mongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	var order domain.Order
	err := m.collection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (m *mongoOrderRepository) AttachGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error {
	update := bson.M{"$set": bson.M{"payment_info.gateway_order_id": gatewayOrderID}}
	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return fmt.Errorf("failed to attach gateway order: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (m *mongoOrderRepository) MarkPaid(ctx context.Context, orderID, gatewayPaymentID, gatewaySignature string, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"status":                          domain.OrderStatusProcessing,
		"payment_status":                  domain.PaymentStatusCompleted,
		"payment_info.gateway_payment_id": gatewayPaymentID,
		"payment_info.gateway_signature":  gatewaySignature,
		"processed_at":                    at,
	}}
	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (m *mongoOrderRepository) MarkFailed(ctx context.Context, orderID, reason string, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"status":         domain.OrderStatusPaymentFailed,
		"payment_status": domain.PaymentStatusFailed,
		"failure_reason": reason,
		"failed_at":      at,
	}}
	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return fmt.Errorf("failed to mark order failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (m *mongoOrderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "payment_info.gateway_order_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}
