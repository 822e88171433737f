package handlers

import (
	"storefront/internal/apiclient"
	"storefront/internal/cart"
	"storefront/internal/dashboard"
	"storefront/internal/gallery"
	"storefront/internal/listing"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

// Dependencies are the components the routes are served from.
type Dependencies struct {
	Client   *apiclient.Client
	Sessions *session.Manager
	Carts    *cart.Registry
	Workflow *workflow.Controller
	Gallery  *gallery.Gallery
}

// RegisterRoutes mounts every console route under /api.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	api := app.Group("/api")
	requireSession := middleware.SessionRequired(d.Sessions)
	requireAdmin := middleware.AdminRequired()

	// Public routes
	NewAuthHandler(d.Sessions, d.Carts).RegisterRoutes(api, requireSession)
	NewCatalogHandler(d.Client).RegisterRoutes(api)
	NewGalleryHandler(d.Gallery).RegisterRoutes(api, requireSession, requireAdmin)

	// Customer and admin routes
	protected := api.Group("", requireSession)
	checkout := cart.NewCheckout(d.Client.Carts, d.Client.CartItems, d.Client.Orders)
	NewCartHandler(d.Carts, checkout, d.Client.Products).RegisterRoutes(protected)
	NewOrderHandler(d.Client.Orders, d.Workflow).RegisterRoutes(protected)

	// Admin routes
	// protected already runs requireSession on every /api path
	admin := api.Group("/admin", requireAdmin)
	NewCRUDHandler[models.Product]("products", d.Client.Products, listing.ProductText, DecodeProduct).RegisterRoutes(admin)
	NewCRUDHandler[models.Category]("categories", d.Client.Categories, listing.CategoryText, nil).RegisterRoutes(admin)
	NewCRUDHandler[models.Role]("roles", d.Client.Roles, listing.RoleText, nil).RegisterRoutes(admin)
	NewCRUDHandler[models.User]("users", d.Client.Users, listing.UserText, nil).RegisterRoutes(admin)
	NewDashboardHandler(&dashboard.Source{
		Products:   d.Client.Products,
		Categories: d.Client.Categories,
		Users:      d.Client.Users,
		Orders:     d.Client.Orders,
	}).RegisterRoutes(admin)
}
