package models

import "github.com/google/uuid"

// Appointment dates and times are stored as zoned-local strings ("2006-01-02"
// and "15:04") so that lexicographic ordering matches chronological ordering.
type Appointment struct {
	BaseModel
	GroupID     uuid.UUID `json:"groupID" gorm:"type:uuid;not null;index"`
	CreatedByID uuid.UUID `json:"createdByID" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"type:varchar(200);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	Date        string    `json:"date" gorm:"type:varchar(10);not null;index"`
	Time        string    `json:"time" gorm:"type:varchar(5);not null"`
	Location    *string   `json:"location,omitempty" gorm:"type:varchar(200)"`

	Group     Group                 `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	CreatedBy User                  `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID"`
	Responses []AppointmentResponse `json:"-" gorm:"foreignKey:AppointmentID"`
}
