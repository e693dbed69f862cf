package models

import "github.com/google/uuid"

// GroupMembership links a user to a group. JoinedAt is the CreatedAt timestamp
// of the row; the owner's membership is created together with the group.
type GroupMembership struct {
	BaseModel
	GroupID uuid.UUID `json:"groupID" gorm:"type:uuid;not null;index;uniqueIndex:idx_group_user"`
	UserID  uuid.UUID `json:"userID" gorm:"type:uuid;not null;index;uniqueIndex:idx_group_user"`

	Group Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
