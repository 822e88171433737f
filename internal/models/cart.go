package models

import "github.com/shopspring/decimal"

// CartRecord is the backend's cart header created at checkout.
type CartRecord struct {
	ID     int `json:"id"`
	UserID int `json:"userId"`
}

// CartItemRecord is one line of a backend cart.
type CartItemRecord struct {
	ID        int `json:"id"`
	CartID    int `json:"cartId"`
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// NewOrderRequest is the body of POST /orders. The backend derives the owner from the bearer token.
type NewOrderRequest struct {
	CartID      int             `json:"cartId"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      OrderStatus     `json:"status"`
}
