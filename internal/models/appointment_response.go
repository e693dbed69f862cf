package models

import (
	"time"

	"github.com/google/uuid"
)

type ResponseKind string

const (
	ResponseAttending ResponseKind = "attending"
	ResponseMaybe     ResponseKind = "maybe"
	ResponseDeclined  ResponseKind = "declined"
)

func (k ResponseKind) Valid() bool {
	switch k {
	case ResponseAttending, ResponseMaybe, ResponseDeclined:
		return true
	default:
		return false
	}
}

// AppointmentResponse holds a member's RSVP for one appointment. At most one
// row exists per (appointment, user); repeat submissions update in place.
type AppointmentResponse struct {
	BaseModel
	AppointmentID uuid.UUID    `json:"appointmentID" gorm:"type:uuid;not null;index;uniqueIndex:idx_appointment_user"`
	UserID        uuid.UUID    `json:"userID" gorm:"type:uuid;not null;index;uniqueIndex:idx_appointment_user"`
	Response      ResponseKind `json:"response" gorm:"type:varchar(20);not null"`
	RespondedAt   time.Time    `json:"respondedAt" gorm:"not null"`

	Appointment Appointment `json:"-" gorm:"foreignKey:AppointmentID"`
	User        User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
