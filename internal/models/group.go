package models

import "github.com/google/uuid"

// InviteCodeLength is the fixed length of a group invite code.
const InviteCodeLength = 8

type Group struct {
	BaseModel
	Name        string    `json:"name" gorm:"type:varchar(150);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	OwnerID     uuid.UUID `json:"ownerID" gorm:"type:uuid;not null;index"`
	InviteCode  string    `json:"inviteCode" gorm:"type:varchar(8);uniqueIndex;not null"`

	Owner        User              `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Memberships  []GroupMembership `json:"memberships,omitempty" gorm:"foreignKey:GroupID"`
	Appointments []Appointment     `json:"-" gorm:"foreignKey:GroupID"`
}
