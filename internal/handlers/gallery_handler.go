package handlers

import (
	"storefront/internal/gallery"

	"github.com/gofiber/fiber/v2"
)

// GalleryHandler serves the hero carousel images.
type GalleryHandler struct {
	gallery *gallery.Gallery
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(g *gallery.Gallery) *GalleryHandler {
	return &GalleryHandler{gallery: g}
}

// RegisterRoutes registers the gallery routes. Listing is public, changes need an admin.
func (h *GalleryHandler) RegisterRoutes(router fiber.Router, admin ...fiber.Handler) {
	routes := router.Group("/gallery")
	routes.Get("/", h.HandleList)
	routes.Post("/", chain(admin, h.HandleAdd)...)
	routes.Delete("/:index", chain(admin, h.HandleRemove)...)
}

func (h *GalleryHandler) HandleList(c *fiber.Ctx) error {
	images, err := h.gallery.List()
	if err != nil {
		return respondError(c, err, "Could not retrieve gallery")
	}
	return c.JSON(images)
}

func (h *GalleryHandler) HandleAdd(c *fiber.Ctx) error {
	var img gallery.Image
	if err := c.BodyParser(&img); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	images, err := h.gallery.Add(img)
	if err != nil {
		return respondError(c, err, "Could not add image")
	}
	return c.Status(fiber.StatusCreated).JSON(images)
}

func (h *GalleryHandler) HandleRemove(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "Invalid image index", err)
	}
	images, err := h.gallery.Remove(index)
	if err != nil {
		return respondError(c, err, "Could not remove image")
	}
	return c.JSON(images)
}
