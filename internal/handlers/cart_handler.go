package handlers

import (
	"net/url"

	"storefront/internal/cart"
	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ProductGetter looks up the product being put in the cart.
type ProductGetter interface {
	Get(token string, id int) (*models.Product, error)
}

// CartHandler handles the session cart and checkout.
type CartHandler struct {
	carts    *cart.Registry
	checkout *cart.Checkout
	products ProductGetter
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *cart.Registry, checkout *cart.Checkout, products ProductGetter) *CartHandler {
	return &CartHandler{carts: carts, checkout: checkout, products: products}
}

// RegisterRoutes registers the cart routes. They all need a session.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Post("/items/:name/increment", h.HandleIncrement)
	cartRoutes.Post("/items/:name/decrement", h.HandleDecrement)
	cartRoutes.Delete("/items/:name", h.HandleRemove)
	cartRoutes.Post("/checkout", h.HandleCheckout)
}

func (h *CartHandler) cart(c *fiber.Ctx) *cart.Cart {
	return h.carts.For(current(c).ID)
}

// lineName is the product name in the path, percent-decoded.
func lineName(c *fiber.Ctx) string {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return c.Params("name")
	}
	return name
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return c.JSON(h.cart(c).Summary())
}

// HandleAddItem puts a product in the cart, or bumps its quantity.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req struct {
		ProductID int `json:"productId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if req.ProductID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"productId": "Product is required"},
		})
	}

	product, err := h.products.Get(current(c).AccessToken, req.ProductID)
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	ct := h.cart(c)
	ct.Add(*product)
	return c.Status(fiber.StatusCreated).JSON(ct.Summary())
}

func (h *CartHandler) HandleIncrement(c *fiber.Ctx) error {
	ct := h.cart(c)
	if err := ct.Increment(lineName(c)); err != nil {
		return respondError(c, err, "Could not update cart")
	}
	return c.JSON(ct.Summary())
}

// HandleDecrement lowers the quantity; a line at quantity 1 is removed.
func (h *CartHandler) HandleDecrement(c *fiber.Ctx) error {
	ct := h.cart(c)
	if err := ct.Decrement(lineName(c)); err != nil {
		return respondError(c, err, "Could not update cart")
	}
	return c.JSON(ct.Summary())
}

func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	ct := h.cart(c)
	if err := ct.Remove(lineName(c)); err != nil {
		return respondError(c, err, "Could not update cart")
	}
	return c.JSON(ct.Summary())
}

// HandleCheckout turns the cart into a pending order.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	order, err := h.checkout.Submit(current(c), h.cart(c))
	if err != nil {
		return respondError(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
