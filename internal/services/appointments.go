package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/planhive/backend/internal/models"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// AppointmentService owns appointment lifecycle within a group. It does not
// check group membership on create; the web layer verifies the creator is a
// member before calling in.
type AppointmentService struct {
	DB  *gorm.DB
	Loc *time.Location

	// Now is swappable in tests; "today" is derived from it in Loc.
	Now func() time.Time
}

func NewAppointmentService(db *gorm.DB, loc *time.Location) *AppointmentService {
	if loc == nil {
		loc = time.Local
	}
	return &AppointmentService{DB: db, Loc: loc, Now: time.Now}
}

func (s *AppointmentService) today() string {
	return s.Now().In(s.Loc).Format(dateLayout)
}

// AppointmentInput carries the fields for a new appointment.
type AppointmentInput struct {
	Title       string
	Date        string
	Time        string
	Description *string
	Location    *string
}

// AppointmentPatch enumerates the mutable appointment fields.
type AppointmentPatch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	Location    *string
}

// AppointmentStats counts a group's appointments.
type AppointmentStats struct {
	Total    int64 `json:"total"`
	Upcoming int64 `json:"upcoming"`
}

// UserAppointmentStats counts appointments across all of a user's groups.
type UserAppointmentStats struct {
	Total    int64 `json:"total"`
	Upcoming int64 `json:"upcoming"`
	Past     int64 `json:"past"`
}

func validDate(value string) bool {
	_, err := time.Parse(dateLayout, value)
	return err == nil
}

func validTime(value string) bool {
	_, err := time.Parse(timeLayout, value)
	return err == nil
}

func (s *AppointmentService) Create(ctx context.Context, groupID, creatorID uuid.UUID, input AppointmentInput) (*models.Appointment, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.Date == "" || !validDate(input.Date) {
		return nil, fmt.Errorf("%w: date must be formatted as %s", ErrValidation, dateLayout)
	}
	if input.Time == "" || !validTime(input.Time) {
		return nil, fmt.Errorf("%w: time must be formatted as %s", ErrValidation, timeLayout)
	}

	appointment := models.Appointment{
		GroupID:     groupID,
		CreatedByID: creatorID,
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		Time:        input.Time,
		Location:    input.Location,
	}

	if err := s.DB.WithContext(ctx).Create(&appointment).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (s *AppointmentService) GetByID(ctx context.Context, appointmentID uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.DB.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Group").
		First(&appointment, "id = ?", appointmentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: appointment does not exist", ErrNotFound)
		}
		return nil, err
	}
	return &appointment, nil
}

// canModify reports whether the user is the appointment's creator or the
// owner of its group.
func (s *AppointmentService) canModify(ctx context.Context, appointment *models.Appointment, userID uuid.UUID) (bool, error) {
	if appointment.CreatedByID == userID {
		return true, nil
	}

	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, "id = ?", appointment.GroupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return group.OwnerID == userID, nil
}

func (s *AppointmentService) Update(ctx context.Context, appointmentID, userID uuid.UUID, patch AppointmentPatch) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.DB.WithContext(ctx).First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: appointment does not exist", ErrNotFound)
		}
		return nil, err
	}

	allowed, err := s.canModify(ctx, &appointment, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: only the creator or the group owner can modify an appointment", ErrNotAuthorized)
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		updates["title"] = title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Date != nil {
		if !validDate(*patch.Date) {
			return nil, fmt.Errorf("%w: date must be formatted as %s", ErrValidation, dateLayout)
		}
		updates["date"] = *patch.Date
	}
	if patch.Time != nil {
		if !validTime(*patch.Time) {
			return nil, fmt.Errorf("%w: time must be formatted as %s", ErrValidation, timeLayout)
		}
		updates["time"] = *patch.Time
	}
	if patch.Location != nil {
		updates["location"] = *patch.Location
	}

	if len(updates) == 0 {
		return nil, ErrNoFields
	}

	if err := s.DB.WithContext(ctx).Model(&appointment).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).First(&appointment, "id = ?", appointmentID).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Delete removes an appointment and its responses in one transaction, so no
// stale response rows outlive the appointment.
func (s *AppointmentService) Delete(ctx context.Context, appointmentID, userID uuid.UUID) error {
	var appointment models.Appointment
	if err := s.DB.WithContext(ctx).First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: appointment does not exist", ErrNotFound)
		}
		return err
	}

	allowed, err := s.canModify(ctx, &appointment, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: only the creator or the group owner can delete an appointment", ErrNotAuthorized)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appointment_id = ?", appointmentID).Delete(&models.AppointmentResponse{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Appointment{}, "id = ?", appointmentID).Error
	})
}

// ListForGroup returns a group's appointments ordered by date then time.
func (s *AppointmentService) ListForGroup(ctx context.Context, groupID uuid.UUID, upcomingOnly bool) ([]models.Appointment, error) {
	query := s.DB.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("date ASC, time ASC").
		Preload("CreatedBy")
	if upcomingOnly {
		query = query.Where("date >= ?", s.today())
	}

	appointments := make([]models.Appointment, 0)
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// ListForUser returns the appointments of every group the user belongs to,
// ordered by date then time.
func (s *AppointmentService) ListForUser(ctx context.Context, userID uuid.UUID, upcomingOnly bool) ([]models.Appointment, error) {
	query := s.DB.WithContext(ctx).
		Model(&models.Appointment{}).
		Joins("JOIN group_memberships ON group_memberships.group_id = appointments.group_id").
		Where("group_memberships.user_id = ?", userID).
		Order("appointments.date ASC, appointments.time ASC").
		Preload("CreatedBy").
		Preload("Group")
	if upcomingOnly {
		query = query.Where("appointments.date >= ?", s.today())
	}

	appointments := make([]models.Appointment, 0)
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// NextForUser returns the user's earliest upcoming appointment, or nil when
// there is none.
func (s *AppointmentService) NextForUser(ctx context.Context, userID uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.DB.WithContext(ctx).
		Model(&models.Appointment{}).
		Joins("JOIN group_memberships ON group_memberships.group_id = appointments.group_id").
		Where("group_memberships.user_id = ?", userID).
		Where("appointments.date >= ?", s.today()).
		Order("appointments.date ASC, appointments.time ASC").
		Preload("CreatedBy").
		Preload("Group").
		First(&appointment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// GroupStats counts a group's total and upcoming appointments.
func (s *AppointmentService) GroupStats(ctx context.Context, groupID uuid.UUID) (AppointmentStats, error) {
	var stats AppointmentStats
	base := s.DB.WithContext(ctx).Model(&models.Appointment{}).Where("group_id = ?", groupID)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return AppointmentStats{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("date >= ?", s.today()).Count(&stats.Upcoming).Error; err != nil {
		return AppointmentStats{}, err
	}
	return stats, nil
}

// StatsForUser counts appointments across all of a user's groups.
func (s *AppointmentService) StatsForUser(ctx context.Context, userID uuid.UUID) (UserAppointmentStats, error) {
	var stats UserAppointmentStats
	base := s.DB.WithContext(ctx).
		Model(&models.Appointment{}).
		Joins("JOIN group_memberships ON group_memberships.group_id = appointments.group_id").
		Where("group_memberships.user_id = ?", userID)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return UserAppointmentStats{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("appointments.date >= ?", s.today()).Count(&stats.Upcoming).Error; err != nil {
		return UserAppointmentStats{}, err
	}
	stats.Past = stats.Total - stats.Upcoming
	return stats, nil
}
