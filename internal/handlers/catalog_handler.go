package handlers

import (
	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

// PublicCatalog is the unauthenticated part of the backend.
type PublicCatalog interface {
	PublicCategories() ([]models.Category, error)
	PublicCatalogs() ([]models.Catalog, error)
}

// CatalogHandler serves the public storefront catalog.
type CatalogHandler struct {
	catalog PublicCatalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog PublicCatalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RegisterRoutes registers the public catalog routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	public := router.Group("/public")
	public.Get("/categories", h.HandleCategories)
	public.Get("/catalogs", h.HandleCatalogs)
}

func (h *CatalogHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.PublicCategories()
	if err != nil {
		return respondError(c, err, "Could not retrieve categories")
	}
	return c.JSON(categories)
}

// HandleCatalogs returns every category with its products.
func (h *CatalogHandler) HandleCatalogs(c *fiber.Ctx) error {
	catalogs, err := h.catalog.PublicCatalogs()
	if err != nil {
		return respondError(c, err, "Could not retrieve catalogs")
	}
	return c.JSON(catalogs)
}
