package domain

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	OrderStatusPaymentFailed OrderStatus = "payment_failed"
	OrderStatusProcessing    OrderStatus = "processing"
	OrderStatusDelivered     OrderStatus = "delivered"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// OrderItem captures the quantity and the unit price at the moment the order
// was created. The price is a snapshot and is never recomputed from the
// catalog afterwards.
type OrderItem struct {
	ItemID    string  `bson:"item_id" json:"item_id"`
	Name      string  `bson:"name" json:"name"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitPrice float64 `bson:"unit_price" json:"unit_price"`
}

// PaymentInfo links the order to the external payment gateway.
type PaymentInfo struct {
	GatewayOrderID   string `bson:"gateway_order_id" json:"gateway_order_id"`
	GatewayPaymentID string `bson:"gateway_payment_id,omitempty" json:"gateway_payment_id,omitempty"`
	GatewaySignature string `bson:"gateway_signature,omitempty" json:"-"`
}

type ShippingInfo struct {
	Name       string `bson:"name" json:"name"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postal_code" json:"postal_code"`
	Phone      string `bson:"phone" json:"phone"`
	Email      string `bson:"email" json:"email"`
}

var ErrShippingInfoIncomplete = errors.New("shipping info is missing required fields")

func (s ShippingInfo) Validate() error {
	if s.Name == "" || s.Address == "" || s.City == "" || s.PostalCode == "" || s.Phone == "" {
		return ErrShippingInfoIncomplete
	}
	return nil
}

// Order is one checkout attempt. Orders are never deleted, only
// status-transitioned, so the collection doubles as an audit trail.
type Order struct {
	ID            string        `bson:"_id" json:"id"`
	UserID        string        `bson:"user_id" json:"user_id"`
	Items         []OrderItem   `bson:"items" json:"items"`
	TotalAmount   float64       `bson:"total_amount" json:"total_amount"`
	Status        OrderStatus   `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`
	PaymentInfo   PaymentInfo   `bson:"payment_info" json:"payment_info"`
	Shipping      ShippingInfo  `bson:"shipping" json:"shipping"`
	FailureReason string        `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	ProcessedAt   *time.Time    `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
	FailedAt      *time.Time    `bson:"failed_at,omitempty" json:"failed_at,omitempty"`
}

// IsCommitted reports whether the order already went through a successful
// stock commit. A committed order is never committed again.
func (o *Order) IsCommitted() bool {
	return o.Status == OrderStatusProcessing && o.PaymentStatus == PaymentStatusCompleted
}
