// Package cart keeps the pre-order selection of a session in memory and turns
// it into a backend order at checkout.
package cart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrLineNotFound is returned when no line exists for a product name.
	ErrLineNotFound = errors.New("product is not in the cart")
	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCheckoutInFlight is returned when a checkout of the same cart is still running.
	ErrCheckoutInFlight = errors.New("checkout already in progress")
)

// Line is one product in the cart. Quantity is at least 1 while the line exists.
type Line struct {
	Product  models.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Cart is an ordered list of lines keyed by product name.
type Cart struct {
	mu          sync.Mutex
	lines       []*Line
	checkingOut bool
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

func (c *Cart) find(name string) int {
	for i, l := range c.lines {
		if l.Product.Name == name {
			return i
		}
	}
	return -1
}

// Add puts a product in the cart with quantity 1, or bumps its quantity when already there.
func (c *Cart) Add(p models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.find(p.Name); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, &Line{Product: p, Quantity: 1})
}

// Increment adds one to the quantity of a line.
func (c *Cart) Increment(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, name)
	}
	c.lines[i].Quantity++
	return nil
}

// Decrement removes one from the quantity of a line. A line at quantity 1 is removed.
func (c *Cart) Decrement(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, name)
	}
	if c.lines[i].Quantity <= 1 {
		c.remove(i)
		return nil
	}
	c.lines[i].Quantity--
	return nil
}

// Remove drops a line whatever its quantity.
func (c *Cart) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, name)
	}
	c.remove(i)
	return nil
}

func (c *Cart) remove(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// beginCheckout marks the cart as being checked out and returns the lines to submit.
func (c *Cart) beginCheckout() ([]Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.checkingOut {
		return nil, ErrCheckoutInFlight
	}
	if len(c.lines) == 0 {
		return nil, ErrEmptyCart
	}
	c.checkingOut = true
	return c.snapshot(), nil
}

// endCheckout releases the checkout mark. On success the submitted quantities
// are taken out of the cart; lines added meanwhile stay.
func (c *Cart) endCheckout(submitted []Line, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkingOut = false
	if !ok {
		return
	}
	for _, l := range submitted {
		i := c.find(l.Product.Name)
		if i < 0 {
			continue
		}
		if c.lines[i].Quantity <= l.Quantity {
			c.remove(i)
			continue
		}
		c.lines[i].Quantity -= l.Quantity
	}
}

// Lines returns a snapshot of the cart with subtotals filled in.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Cart) snapshot() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		line := *l
		line.Subtotal = line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		out = append(out, line)
	}
	return out
}

// Total is the sum of price times quantity over every line.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines() {
		total = total.Add(l.Subtotal)
	}
	return total
}

// Summary is the cart as shown to the customer.
type Summary struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Summary returns the lines, the total and the number of items.
func (c *Cart) Summary() Summary {
	lines := c.Lines()
	s := Summary{Lines: lines, Total: decimal.Zero}
	for _, l := range lines {
		s.Total = s.Total.Add(l.Subtotal)
		s.Count += l.Quantity
	}
	return s
}

// Registry holds one cart per session. Carts live only in memory.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*registered
}

type registered struct {
	cart     *Cart
	lastUsed time.Time
}

// NewRegistry creates a new Registry.
func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*registered)}
}

// For returns the cart of a session, creating it on first use.
func (r *Registry) For(sessionID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.carts[sessionID]
	if !ok {
		e = &registered{cart: New()}
		r.carts[sessionID] = e
	}
	e.lastUsed = time.Now()
	return e.cart
}

// Discard drops the cart of a session.
func (r *Registry) Discard(sessionID string) {
	r.mu.Lock()
	delete(r.carts, sessionID)
	r.mu.Unlock()
}

// Len is the number of carts held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// EvictUnusedSince drops every cart not used since cutoff and returns how many went.
func (r *Registry) EvictUnusedSince(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.carts {
		if e.lastUsed.Before(cutoff) {
			delete(r.carts, id)
			evicted++
		}
	}
	return evicted
}

// StartEviction drops, every interval, the carts idle for longer than idle.
// With idle set to the session TTL only carts of expired sessions go.
// The returned func stops the sweeper.
func (r *Registry) StartEviction(idle, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := r.EvictUnusedSince(time.Now().Add(-idle)); n > 0 {
					log.Printf("Evicted %d idle carts", n)
				}
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
