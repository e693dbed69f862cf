package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/planhive/backend/internal/models"
	"gorm.io/gorm"
)

// kindOrder sorts responses attending, maybe, declined for display.
const kindOrder = "CASE response WHEN 'attending' THEN 0 WHEN 'maybe' THEN 1 ELSE 2 END"

// ResponseService owns per-user RSVP state and the aggregate tallies. Like
// appointment creation, membership is a caller-side precondition.
type ResponseService struct {
	DB *gorm.DB
}

func NewResponseService(db *gorm.DB) *ResponseService {
	return &ResponseService{DB: db}
}

// Tally is the aggregate response count for one appointment.
type Tally struct {
	Attending int64 `json:"attending"`
	Maybe     int64 `json:"maybe"`
	Declined  int64 `json:"declined"`
	Total     int64 `json:"total"`
}

// Respond records the user's RSVP. A repeat submission overwrites the prior
// response in place and refreshes its timestamp; N calls leave exactly one
// row reflecting the last kind submitted.
func (s *ResponseService) Respond(ctx context.Context, appointmentID, userID uuid.UUID, kind models.ResponseKind) (*models.AppointmentResponse, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: response must be attending, maybe or declined", ErrInvalidResponse)
	}

	var response models.AppointmentResponse
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Appointment{}).Where("id = ?", appointmentID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: appointment does not exist", ErrNotFound)
		}

		err := tx.First(&response, "appointment_id = ? AND user_id = ?", appointmentID, userID).Error
		switch err {
		case nil:
			return tx.Model(&response).Updates(map[string]interface{}{
				"response":     kind,
				"responded_at": time.Now().UTC(),
			}).Error
		case gorm.ErrRecordNotFound:
			response = models.AppointmentResponse{
				AppointmentID: appointmentID,
				UserID:        userID,
				Response:      kind,
				RespondedAt:   time.Now().UTC(),
			}
			return tx.Create(&response).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).First(&response, "appointment_id = ? AND user_id = ?", appointmentID, userID).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

// Get returns the user's response for an appointment, or nil when absent.
func (s *ResponseService) Get(ctx context.Context, appointmentID, userID uuid.UUID) (*models.AppointmentResponse, error) {
	var response models.AppointmentResponse
	err := s.DB.WithContext(ctx).First(&response, "appointment_id = ? AND user_id = ?", appointmentID, userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &response, nil
}

// ListForAppointment returns every response with the responding user loaded,
// ordered attending first, then by user name for deterministic display.
func (s *ResponseService) ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]models.AppointmentResponse, error) {
	responses := make([]models.AppointmentResponse, 0)
	err := s.DB.WithContext(ctx).
		Model(&models.AppointmentResponse{}).
		Joins("JOIN users ON users.id = appointment_responses.user_id").
		Where("appointment_responses.appointment_id = ?", appointmentID).
		Order(kindOrder + ", users.name ASC").
		Preload("User").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GroupedByKind partitions an appointment's responses into the three kinds,
// preserving the per-kind ordering of ListForAppointment. All three keys are
// always present.
func (s *ResponseService) GroupedByKind(ctx context.Context, appointmentID uuid.UUID) (map[models.ResponseKind][]models.AppointmentResponse, error) {
	responses, err := s.ListForAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	grouped := map[models.ResponseKind][]models.AppointmentResponse{
		models.ResponseAttending: {},
		models.ResponseMaybe:     {},
		models.ResponseDeclined:  {},
	}
	for _, response := range responses {
		grouped[response.Response] = append(grouped[response.Response], response)
	}
	return grouped, nil
}

// TallyForAppointment counts responses per kind plus the total.
func (s *ResponseService) TallyForAppointment(ctx context.Context, appointmentID uuid.UUID) (Tally, error) {
	type row struct {
		Response models.ResponseKind
		Count    int64
	}

	var rows []row
	err := s.DB.WithContext(ctx).
		Model(&models.AppointmentResponse{}).
		Select("response, COUNT(*) as count").
		Where("appointment_id = ?", appointmentID).
		Group("response").
		Find(&rows).Error
	if err != nil {
		return Tally{}, err
	}

	var tally Tally
	for _, r := range rows {
		switch r.Response {
		case models.ResponseAttending:
			tally.Attending = r.Count
		case models.ResponseMaybe:
			tally.Maybe = r.Count
		case models.ResponseDeclined:
			tally.Declined = r.Count
		}
		tally.Total += r.Count
	}
	return tally, nil
}

// Delete removes the user's response. Removing an absent response is a no-op.
func (s *ResponseService) Delete(ctx context.Context, appointmentID, userID uuid.UUID) error {
	return s.DB.WithContext(ctx).
		Where("appointment_id = ? AND user_id = ?", appointmentID, userID).
		Delete(&models.AppointmentResponse{}).Error
}
