package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/planhive/backend/internal/middleware"
	"github.com/planhive/backend/internal/models"
	"github.com/planhive/backend/internal/services"
	"github.com/planhive/backend/pkg/logger"
	"github.com/planhive/backend/pkg/utils"
)

// AppointmentsHandler is the web layer over appointments and RSVPs. The
// membership checks the scheduler and response tracker leave to their caller
// happen here.
type AppointmentsHandler struct {
	Groups       *services.GroupService
	Appointments *services.AppointmentService
	Responses    *services.ResponseService
}

func NewAppointmentsHandler(groups *services.GroupService, appointments *services.AppointmentService, responses *services.ResponseService) *AppointmentsHandler {
	return &AppointmentsHandler{Groups: groups, Appointments: appointments, Responses: responses}
}

// requireMembership resolves the appointment and verifies the current user
// belongs to its group.
func (h *AppointmentsHandler) requireMembership(c *fiber.Ctx, appointmentID, userID uuid.UUID) (*models.Appointment, error) {
	appointment, err := h.Appointments.GetByID(c.Context(), appointmentID)
	if err != nil {
		return nil, err
	}

	isMember, err := h.Groups.IsMember(c.Context(), appointment.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, services.ErrNotAuthorized
	}
	return appointment, nil
}

type createAppointmentRequest struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

func (h *AppointmentsHandler) Create(c *fiber.Ctx) error {
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

	var req createAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	appointment, err := h.Appointments.Create(c.Context(), groupID, currentUser.ID, services.AppointmentInput{
		Title:       req.Title,
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return respondServiceError(c, err, "appointment_create_failed")
	}

	logger.InfoWithUser(currentUser.ID.String(), "appointment_created", map[string]interface{}{
		"appointment_id": appointment.ID.String(),
		"group_id":       groupID.String(),
	})

	return utils.Success(c, fiber.StatusCreated, appointment)
}

func (h *AppointmentsHandler) ListForGroup(c *fiber.Ctx) error {
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

	appointments, err := h.Appointments.ListForGroup(c.Context(), groupID, c.QueryBool("upcoming"))
	if err != nil {
		return respondServiceError(c, err, "appointment_list_failed")
	}

	return utils.Success(c, fiber.StatusOK, appointments)
}

func (h *AppointmentsHandler) ListForUser(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	appointments, err := h.Appointments.ListForUser(c.Context(), currentUser.ID, c.QueryBool("upcoming"))
	if err != nil {
		return respondServiceError(c, err, "appointment_list_failed")
	}

	return utils.Success(c, fiber.StatusOK, appointments)
}

func (h *AppointmentsHandler) Next(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	appointment, err := h.Appointments.NextForUser(c.Context(), currentUser.ID)
	if err != nil {
		return respondServiceError(c, err, "appointment_next_failed")
	}

	return utils.Success(c, fiber.StatusOK, appointment)
}

func (h *AppointmentsHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	appointmentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid appointment id")
	}

	appointment, err := h.requireMembership(c, appointmentID, currentUser.ID)
	if err != nil {
		return respondServiceError(c, err, "appointment_load_failed")
	}

	return utils.Success(c, fiber.StatusOK, appointment)
}

type updateAppointmentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Location    *string `json:"location"`
}

func (h *AppointmentsHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	appointmentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid appointment id")
	}

	var req updateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	appointment, err := h.Appointments.Update(c.Context(), appointmentID, currentUser.ID, services.AppointmentPatch{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
	})
	if err != nil {
		return respondServiceError(c, err, "appointment_update_failed")
	}

	return utils.Success(c, fiber.StatusOK, appointment)
}

func (h *AppointmentsHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	appointmentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid appointment id")
	}

	if err := h.Appointments.Delete(c.Context(), appointmentID, currentUser.ID); err != nil {
		return respondServiceError(c, err, "appointment_delete_failed")
	}

	logger.InfoWithUser(currentUser.ID.String(), "appointment_deleted", map[string]interface{}{
		"appointment_id": appointmentID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "appointment deleted"})
}

type respondRequest struct {
	Response models.ResponseKind `json:"response"`
}

func (h *AppointmentsHandler) Respond(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	appointmentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid appointment id")
	}

	if _, err := h.requireMembership(c, appointmentID, currentUser.ID); err != nil {
		return respondServiceError(c, err, "appointment_load_failed")
	}

	var req respondRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.Responses.Respond(c.Context(), appointmentID, currentUser.ID, req.Response)
	if err != nil {
		return respondServiceError(c, err, "response_save_failed")
	}

	return utils.Success(c, fiber.StatusOK, response)
}

func (h *AppointmentsHandler) DeleteResponse(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	appointmentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid appointment id")
	}

	if _, err := h.requireMembership(c, appointmentID, currentUser.ID); err != nil {
		return respondServiceError(c, err, "appointment_load_failed")
	}

	if err := h.Responses.Delete(c.Context(), appointmentID, currentUser.ID); err != nil {
		return respondServiceError(c, err, "response_delete_failed")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "response removed"})
}

func (h *AppointmentsHandler) ListResponses(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	appointmentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid appointment id")
	}

	if _, err := h.requireMembership(c, appointmentID, currentUser.ID); err != nil {
		return respondServiceError(c, err, "appointment_load_failed")
	}

	if c.QueryBool("grouped") {
		grouped, err := h.Responses.GroupedByKind(c.Context(), appointmentID)
		if err != nil {
			return respondServiceError(c, err, "response_list_failed")
		}
		return utils.Success(c, fiber.StatusOK, grouped)
	}

	responses, err := h.Responses.ListForAppointment(c.Context(), appointmentID)
	if err != nil {
		return respondServiceError(c, err, "response_list_failed")
	}
	return utils.Success(c, fiber.StatusOK, responses)
}

func (h *AppointmentsHandler) Tally(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	appointmentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid appointment id")
	}

	if _, err := h.requireMembership(c, appointmentID, currentUser.ID); err != nil {
		return respondServiceError(c, err, "appointment_load_failed")
	}

	tally, err := h.Responses.TallyForAppointment(c.Context(), appointmentID)
	if err != nil {
		return respondServiceError(c, err, "response_tally_failed")
	}
	return utils.Success(c, fiber.StatusOK, tally)
}
