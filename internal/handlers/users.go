package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/planhive/backend/internal/middleware"
	"github.com/planhive/backend/internal/models"
	"github.com/planhive/backend/pkg/logger"
	"github.com/planhive/backend/pkg/utils"
	"gorm.io/gorm"
)

// UsersHandler exposes the admin-only user management surface.
type UsersHandler struct {
	DB *gorm.DB
}

func NewUsersHandler(db *gorm.DB) *UsersHandler {
	return &UsersHandler{DB: db}
}

func (h *UsersHandler) List(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	query := h.DB.Model(&models.User{})
	if search != "" {
		searchValue := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", searchValue, searchValue)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed counting users")
	}

	var users []models.User
	if err := utils.ApplyPagination(query.Order("created_at DESC"), p).Find(&users).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing users")
	}

	return utils.Paginated(c, users, p.Page, p.Limit, total)
}

func (h *UsersHandler) Get(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	return utils.Success(c, fiber.StatusOK, user)
}

type updateUserRequest struct {
	Role    *models.UserRole `json:"role"`
	Blocked *bool            `json:"blocked"`
}

// Update lets an admin block/unblock a user or change their role.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}
	if userID == currentUser.ID {
		return utils.Error(c, fiber.StatusBadRequest, "cannot modify own account")
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		if *req.Role != models.UserRoleAdmin && *req.Role != models.UserRoleStudent {
			return utils.Error(c, fiber.StatusBadRequest, "invalid role")
		}
		updates["role"] = *req.Role
	}
	if req.Blocked != nil {
		updates["blocked"] = *req.Blocked
	}

	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	result := h.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating user")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	}

	logger.InfoWithUser(currentUser.ID.String(), "user_updated", map[string]interface{}{
		"target_user_id": userID.String(),
	})

	var updated models.User
	if err := h.DB.First(&updated, "id = ?", userID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading updated user")
	}
	return utils.Success(c, fiber.StatusOK, updated)
}

func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}
	if userID == currentUser.ID {
		return utils.Error(c, fiber.StatusBadRequest, "cannot delete own account")
	}

	result := h.DB.Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting user")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	}

	logger.InfoWithUser(currentUser.ID.String(), "user_deleted", map[string]interface{}{
		"target_user_id": userID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "user deleted"})
}
