package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/planhive/backend/internal/middleware"
	"github.com/planhive/backend/internal/models"
	"github.com/planhive/backend/internal/services"
	"github.com/planhive/backend/pkg/utils"
)

type TasksHandler struct {
	Tasks *services.TaskService
}

func NewTasksHandler(tasks *services.TaskService) *TasksHandler {
	return &TasksHandler{Tasks: tasks}
}

type createTaskRequest struct {
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Deadline    string              `json:"deadline"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
}

func (h *TasksHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	task, err := h.Tasks.Create(c.Context(), currentUser.ID, services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Priority:    req.Priority,
		Status:      req.Status,
	})
	if err != nil {
		return respondServiceError(c, err, "task_create_failed")
	}

	return utils.Success(c, fiber.StatusCreated, task)
}

func (h *TasksHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	tasks, err := h.Tasks.ListForUser(c.Context(), currentUser.ID, models.TaskStatus(c.Query("status")))
	if err != nil {
		return respondServiceError(c, err, "task_list_failed")
	}

	return utils.Success(c, fiber.StatusOK, tasks)
}

func (h *TasksHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	taskID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid task id")
	}

	task, err := h.Tasks.GetByID(c.Context(), taskID, currentUser.ID)
	if err != nil {
		return respondServiceError(c, err, "task_load_failed")
	}

	return utils.Success(c, fiber.StatusOK, task)
}

type updateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Deadline    *string              `json:"deadline"`
	Priority    *models.TaskPriority `json:"priority"`
	Status      *models.TaskStatus   `json:"status"`
}

func (h *TasksHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	taskID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid task id")
	}

	var req updateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	task, err := h.Tasks.Update(c.Context(), taskID, currentUser.ID, services.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Priority:    req.Priority,
		Status:      req.Status,
	})
	if err != nil {
		return respondServiceError(c, err, "task_update_failed")
	}

	return utils.Success(c, fiber.StatusOK, task)
}

func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	taskID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid task id")
	}

	if err := h.Tasks.Delete(c.Context(), taskID, currentUser.ID); err != nil {
		return respondServiceError(c, err, "task_delete_failed")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "task deleted"})
}

func (h *TasksHandler) Stats(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	stats, err := h.Tasks.StatsForUser(c.Context(), currentUser.ID)
	if err != nil {
		return respondServiceError(c, err, "task_stats_failed")
	}

	return utils.Success(c, fiber.StatusOK, stats)
}
