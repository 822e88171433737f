package handlers

import (
	"fmt"

	"storefront/internal/listing"
	"storefront/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CRUD is a conventional backend resource.
type CRUD[T any] interface {
	List(token string) ([]T, error)
	Get(token string, id int) (*T, error)
	Create(token string, body interface{}) (*T, error)
	Update(token string, id int, body interface{}) (*T, error)
	Delete(token string, id int) error
}

// BodyDecoder turns a request into the body sent to the backend. It validates
// the input and returns *validation.Errors for bad fields.
type BodyDecoder func(c *fiber.Ctx) (interface{}, error)

// CRUDHandler serves the admin list and form screens of one resource.
type CRUDHandler[T any] struct {
	name     string
	resource CRUD[T]
	text     func(T) string
	decode   BodyDecoder
}

// NewCRUDHandler creates a CRUDHandler. A nil decode parses and validates JSON into T.
func NewCRUDHandler[T any](name string, resource CRUD[T], text func(T) string, decode BodyDecoder) *CRUDHandler[T] {
	if decode == nil {
		decode = DecodeJSON[T]
	}
	return &CRUDHandler[T]{name: name, resource: resource, text: text, decode: decode}
}

// DecodeJSON parses the body into T and validates it.
func DecodeJSON[T any](c *fiber.Ctx) (interface{}, error) {
	var body T
	if err := c.BodyParser(&body); err != nil {
		return nil, err
	}
	if err := validation.Struct(body); err != nil {
		return nil, err
	}
	return body, nil
}

// RegisterRoutes registers /<name> list, detail, create, update and delete.
func (h *CRUDHandler[T]) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/" + h.name)
	routes.Get("/", h.HandleList)
	routes.Get("/:id", h.HandleGet)
	routes.Post("/", h.HandleCreate)
	routes.Put("/:id", h.HandleUpdate)
	routes.Delete("/:id", h.HandleDelete)
}

// HandleList returns one page of the resource, filtered by ?search=.
func (h *CRUDHandler[T]) HandleList(c *fiber.Ctx) error {
	var q listing.Query
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query", err)
	}
	items, err := h.resource.List(current(c).AccessToken)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not retrieve %s", h.name))
	}
	return c.JSON(listing.Paginate(items, q, h.text))
}

func (h *CRUDHandler[T]) HandleGet(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid ID", err)
	}
	item, err := h.resource.Get(current(c).AccessToken, id)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not retrieve %s %d", h.name, id))
	}
	return c.JSON(item)
}

func (h *CRUDHandler[T]) body(c *fiber.Ctx) (interface{}, error) {
	body, err := h.decode(c)
	if err != nil {
		if _, ok := validation.As(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return body, nil
}

func (h *CRUDHandler[T]) HandleCreate(c *fiber.Ctx) error {
	body, err := h.body(c)
	if err != nil {
		return h.rejectBody(c, err)
	}
	item, err := h.resource.Create(current(c).AccessToken, body)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not create %s", h.name))
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *CRUDHandler[T]) HandleUpdate(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid ID", err)
	}
	body, err := h.body(c)
	if err != nil {
		return h.rejectBody(c, err)
	}
	item, err := h.resource.Update(current(c).AccessToken, id, body)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not update %s %d", h.name, id))
	}
	return c.JSON(item)
}

func (h *CRUDHandler[T]) HandleDelete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid ID", err)
	}
	if err := h.resource.Delete(current(c).AccessToken, id); err != nil {
		return respondError(c, err, fmt.Sprintf("Could not delete %s %d", h.name, id))
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Deleted %s %d", h.name, id)})
}

func (h *CRUDHandler[T]) rejectBody(c *fiber.Ctx, err error) error {
	if _, ok := validation.As(err); ok {
		return respondError(c, err, "")
	}
	return badRequest(c, "Invalid request body", err)
}
