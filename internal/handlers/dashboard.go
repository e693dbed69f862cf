package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/planhive/backend/internal/middleware"
	"github.com/planhive/backend/internal/services"
	"github.com/planhive/backend/pkg/utils"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard}
}

// Get returns the aggregated dashboard for the current user. Partial storage
// failures degrade to zero values rather than failing the whole request.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	return utils.Success(c, fiber.StatusOK, h.Dashboard.Build(c.Context(), currentUser.ID))
}
