package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/planhive/backend/internal/services"
	"github.com/planhive/backend/pkg/logger"
	"github.com/planhive/backend/pkg/utils"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

// respondServiceError translates the service error taxonomy into an HTTP
// response. Unrecognized errors are storage failures: logged and reported as
// 500 without crashing the request.
func respondServiceError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrNoFields),
		errors.Is(err, services.ErrInvalidResponse):
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotAuthorized),
		errors.Is(err, services.ErrOwnerCannotLeave):
		return utils.Error(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		return utils.Error(c, fiber.StatusConflict, err.Error())
	default:
		logger.Error(action, err, map[string]interface{}{"path": c.Path()})
		return utils.Error(c, fiber.StatusInternalServerError, "unexpected storage error")
	}
}
