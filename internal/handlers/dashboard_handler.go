package handlers

import (
	"time"

	"storefront/internal/dashboard"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the admin reporting figures.
type DashboardHandler struct {
	source *dashboard.Source
	now    func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(source *dashboard.Source) *DashboardHandler {
	return &DashboardHandler{source: source, now: time.Now}
}

func (h *DashboardHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleDashboard)
}

// HandleDashboard returns the counts and the last ?days= days of orders and revenue.
func (h *DashboardHandler) HandleDashboard(c *fiber.Ctx) error {
	days := c.QueryInt("days", dashboard.DefaultDays)
	if days > 90 {
		days = 90
	}
	report, err := h.source.Load(current(c).AccessToken, days, h.now())
	if err != nil {
		return respondError(c, err, "Could not build dashboard")
	}
	return c.JSON(report)
}
