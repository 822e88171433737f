package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle stage of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPaid       OrderStatus = "paid"
	StatusOnDelivery OrderStatus = "on delivery"
	StatusDelivered  OrderStatus = "delivered"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusPending, StatusPaid, StatusOnDelivery, StatusDelivered}

// ParseOrderStatus validates a status string coming from the backend or a form.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid order status: %s", s)
}

// Next returns the stage that follows s. The final stage has no successor.
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, st := range OrderStatuses {
		if st == s && i+1 < len(OrderStatuses) {
			return OrderStatuses[i+1], true
		}
	}
	return "", false
}

// Rank is the position of s in the lifecycle, or -1 for unknown values.
func (s OrderStatus) Rank() int {
	for i, st := range OrderStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID int             `json:"productId"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // Price at the time of order
}

// Subtotal is the captured price times the quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Review is written by the customer once the order is delivered.
type Review struct {
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	IsReviewed bool   `json:"isReviewed"`
}

// Order represents a customer order.
type Order struct {
	ID          int             `json:"id"`
	UserID      int             `json:"userId"`
	User        *User           `json:"user,omitempty"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      OrderStatus     `json:"status"`
	Address     string          `json:"address"`
	Evidence    Binary          `json:"evidence,omitempty"`
	Receipt     Binary          `json:"receipt,omitempty"`
	Review
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasEvidence reports whether a payment proof is stored.
func (o *Order) HasEvidence() bool { return len(o.Evidence) > 0 }

// HasReceipt reports whether a shipment proof is stored.
func (o *Order) HasReceipt() bool { return len(o.Receipt) > 0 }

// CustomerName falls back to the user reference when the backend did not embed the user.
func (o *Order) CustomerName() string {
	if o.User != nil && o.User.Name != "" {
		return o.User.Name
	}
	return fmt.Sprintf("user #%d", o.UserID)
}
