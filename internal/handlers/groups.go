package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/planhive/backend/internal/middleware"
	"github.com/planhive/backend/internal/services"
	"github.com/planhive/backend/pkg/logger"
	"github.com/planhive/backend/pkg/utils"
)

type GroupsHandler struct {
	Groups       *services.GroupService
	Appointments *services.AppointmentService
}

func NewGroupsHandler(groups *services.GroupService, appointments *services.AppointmentService) *GroupsHandler {
	return &GroupsHandler{Groups: groups, Appointments: appointments}
}

type createGroupRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.Groups.Create(c.Context(), currentUser.ID, req.Name, req.Description)
	if err != nil {
		return respondServiceError(c, err, "group_create_failed")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_created", map[string]interface{}{
		"group_id":   group.ID.String(),
		"group_name": group.Name,
	})

	return utils.Success(c, fiber.StatusCreated, group)
}

func (h *GroupsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groups, err := h.Groups.ListForUser(c.Context(), currentUser.ID)
	if err != nil {
		return respondServiceError(c, err, "group_list_failed")
	}

	return utils.Success(c, fiber.StatusOK, groups)
}

type joinGroupRequest struct {
	InviteCode string `json:"inviteCode"`
}

func (h *GroupsHandler) Join(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req joinGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.Groups.JoinByInviteCode(c.Context(), req.InviteCode, currentUser.ID)
	if err != nil {
		return respondServiceError(c, err, "group_join_failed")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_joined", map[string]interface{}{
		"group_id": group.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, group)
}

func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	isMember, err := h.Groups.IsMember(c.Context(), groupID, currentUser.ID)
	if err != nil {
		return respondServiceError(c, err, "group_membership_check_failed")
	}
	if !isMember {
		return utils.Error(c, fiber.StatusForbidden, "group access denied")
	}

	group, err := h.Groups.GetByID(c.Context(), groupID)
	if err != nil {
		return respondServiceError(c, err, "group_load_failed")
	}

	return utils.Success(c, fiber.StatusOK, group)
}

type updateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *GroupsHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	var req updateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.Groups.Update(c.Context(), groupID, currentUser.ID, services.GroupPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err, "group_update_failed")
	}

	return utils.Success(c, fiber.StatusOK, group)
}

func (h *GroupsHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if err := h.Groups.Delete(c.Context(), groupID, currentUser.ID); err != nil {
		return respondServiceError(c, err, "group_delete_failed")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_deleted", map[string]interface{}{
		"group_id": groupID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "group deleted"})
}

func (h *GroupsHandler) Leave(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if err := h.Groups.Leave(c.Context(), groupID, currentUser.ID); err != nil {
		return respondServiceError(c, err, "group_leave_failed")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_left", map[string]interface{}{
		"group_id": groupID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "left group"})
}

func (h *GroupsHandler) ListMembers(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	isMember, err := h.Groups.IsMember(c.Context(), groupID, currentUser.ID)
	if err != nil {
		return respondServiceError(c, err, "group_membership_check_failed")
	}
	if !isMember {
		return utils.Error(c, fiber.StatusForbidden, "group access denied")
	}

	members, err := h.Groups.ListMembers(c.Context(), groupID)
	if err != nil {
		return respondServiceError(c, err, "group_members_failed")
	}

	return utils.Success(c, fiber.StatusOK, members)
}

func (h *GroupsHandler) Stats(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	isMember, err := h.Groups.IsMember(c.Context(), groupID, currentUser.ID)
	if err != nil {
		return respondServiceError(c, err, "group_membership_check_failed")
	}
	if !isMember {
		return utils.Error(c, fiber.StatusForbidden, "group access denied")
	}

	stats, err := h.Appointments.GroupStats(c.Context(), groupID)
	if err != nil {
		return respondServiceError(c, err, "group_stats_failed")
	}

	return utils.Success(c, fiber.StatusOK, stats)
}
