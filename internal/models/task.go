package models

import "github.com/google/uuid"

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityNormal TaskPriority = "normal"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityNormal, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

type Task struct {
	BaseModel
	UserID      uuid.UUID    `json:"userID" gorm:"type:uuid;not null;index"`
	Title       string       `json:"title" gorm:"type:varchar(200);not null"`
	Description *string      `json:"description,omitempty" gorm:"type:text"`
	Deadline    string       `json:"deadline" gorm:"type:varchar(10);not null;index"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(20);not null;default:'normal'"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);not null;default:'todo'"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
