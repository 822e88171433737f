package cart

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/session"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Creator is a backend resource that records can be posted to.
type Creator[T any] interface {
	Create(token string, body interface{}) (*T, error)
}

// Checkout submits carts to the backend.
type Checkout struct {
	carts  Creator[models.CartRecord]
	items  Creator[models.CartItemRecord]
	orders Creator[models.Order]
}

// NewCheckout creates a new Checkout.
func NewCheckout(carts Creator[models.CartRecord], items Creator[models.CartItemRecord], orders Creator[models.Order]) *Checkout {
	return &Checkout{carts: carts, items: items, orders: orders}
}

// Submit records the cart and its lines, then creates a pending order with
// the prices as they are now. Only one checkout of a cart runs at a time, and
// the submitted lines leave the cart only when every call succeeded.
func (co *Checkout) Submit(s *session.Session, c *Cart) (order *models.Order, err error) {
	lines, err := c.beginCheckout()
	if err != nil {
		return nil, err
	}
	defer func() { c.endCheckout(lines, err == nil) }()

	record, err := co.carts.Create(s.AccessToken, struct{}{})
	if err != nil {
		log.Printf("Error creating cart: %v", err)
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		_, err := co.items.Create(s.AccessToken, models.CartItemRecord{
			CartID:    record.ID,
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
		})
		if err != nil {
			log.Printf("Error adding %s to cart %d: %v", l.Product.Name, record.ID, err)
			return nil, fmt.Errorf("failed to add %s to cart: %w", l.Product.Name, err)
		}
		items = append(items, models.OrderItem{ProductID: l.Product.ID, Quantity: l.Quantity, Price: l.Product.Price})
		total = total.Add(l.Subtotal)
	}

	order, err = co.orders.Create(s.AccessToken, models.NewOrderRequest{
		CartID:      record.ID,
		Items:       items,
		TotalAmount: total,
		Status:      models.StatusPending,
	})
	if err != nil {
		log.Printf("Error creating order for cart %d: %v", record.ID, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	log.WithFields(log.Fields{"order": order.ID, "cart": record.ID, "total": total.String()}).Info("order created")
	return order, nil
}
