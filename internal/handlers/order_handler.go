package handlers

import (
	"fmt"

	"storefront/internal/listing"
	"storefront/internal/models"
	"storefront/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

// OrderLister lists the orders visible to a token.
type OrderLister interface {
	List(token string) ([]models.Order, error)
}

// OrderHandler handles HTTP requests for orders and their workflow actions.
type OrderHandler struct {
	orders   OrderLister
	workflow *workflow.Controller
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders OrderLister, controller *workflow.Controller) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		workflow: controller,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/payment", h.HandleConfirmPayment)
	orderRoutes.Post("/:id/verify", h.HandleVerifyPayment)
	orderRoutes.Post("/:id/receipt", h.HandleSendReceipt)
	orderRoutes.Get("/:id/evidence", h.HandleDownload(workflow.KindEvidence))
	orderRoutes.Get("/:id/receipt", h.HandleDownload(workflow.KindReceipt))
}

// orderSummary is a list row. Attachments are reduced to flags.
type orderSummary struct {
	ID          int                `json:"id"`
	Customer    string             `json:"customer"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount string             `json:"totalAmount"`
	Address     string             `json:"address"`
	HasEvidence bool               `json:"hasEvidence"`
	HasReceipt  bool               `json:"hasReceipt"`
	Actions     []workflow.Action  `json:"actions"`
	CreatedAt   string             `json:"createdAt"`
}

// HandleGetOrders lists the orders of the session with search and pagination.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	var q listing.Query
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query", err)
	}
	s := current(c)
	orders, err := h.orders.List(s.AccessToken)
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}

	page := listing.Paginate(orders, q, listing.OrderText)
	rows := make([]orderSummary, 0, len(page.Items))
	role := workflow.RoleOf(s)
	for i := range page.Items {
		o := &page.Items[i]
		rows = append(rows, orderSummary{
			ID:          o.ID,
			Customer:    o.CustomerName(),
			Status:      o.Status,
			TotalAmount: o.TotalAmount.String(),
			Address:     o.Address,
			HasEvidence: o.HasEvidence(),
			HasReceipt:  o.HasReceipt(),
			Actions:     workflow.Actions(o.Status, role),
			CreatedAt:   o.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return c.JSON(listing.Page[orderSummary]{
		Items:   rows,
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
		Pages:   page.Pages,
	})
}

// HandleGetOrderByID returns an order with its enabled actions.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid order ID", err)
	}
	view, err := h.workflow.View(current(c), id)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not retrieve order %d", id))
	}
	return c.JSON(view)
}

// HandleConfirmPayment takes the multipart address and evidence form of a pending order.
func (h *OrderHandler) HandleConfirmPayment(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid order ID", err)
	}
	evidence, err := formUpload(c, workflow.KindEvidence)
	if err != nil {
		return badRequest(c, "Invalid evidence upload", err)
	}
	res, err := h.workflow.ConfirmPayment(current(c), id, c.FormValue("address"), evidence)
	if err != nil {
		return respondError(c, err, "Payment confirmation failed")
	}
	return c.JSON(fiber.Map{
		"message": "Payment confirmed",
		"order":   res.View,
	})
}

// HandleVerifyPayment moves a paid order on delivery and returns the customer notification.
func (h *OrderHandler) HandleVerifyPayment(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid order ID", err)
	}
	res, err := h.workflow.VerifyPayment(current(c), id)
	if err != nil {
		return respondError(c, err, "Payment verification failed")
	}
	return c.JSON(fiber.Map{
		"message":      "Payment verified",
		"order":        res.View,
		"notification": res.Notification,
	})
}

func (h *OrderHandler) HandleSendReceipt(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid order ID", err)
	}
	receipt, err := formUpload(c, workflow.KindReceipt)
	if err != nil {
		return badRequest(c, "Invalid receipt upload", err)
	}
	res, err := h.workflow.SendReceipt(current(c), id, receipt)
	if err != nil {
		return respondError(c, err, "Sending receipt failed")
	}
	return c.JSON(fiber.Map{
		"message": "Receipt sent",
		"order":   res.View,
	})
}

// HandleDownload streams a stored attachment as a file download.
func (h *OrderHandler) HandleDownload(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return badRequest(c, "Invalid order ID", err)
		}
		file, err := h.workflow.Download(current(c), id, kind)
		if err != nil {
			return respondError(c, err, fmt.Sprintf("Could not download %s", kind))
		}
		c.Attachment(file.Filename)
		c.Set(fiber.HeaderContentType, file.ContentType)
		return c.Send(file.Content)
	}
}
