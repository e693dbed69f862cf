package models

type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleStudent UserRole = "student"
)

type User struct {
	BaseModel
	Name         string   `json:"name" gorm:"type:varchar(100);not null"`
	Email        string   `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"type:text;not null"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;default:'student'"`
	Blocked      bool     `json:"blocked" gorm:"not null;default:false"`

	Memberships []GroupMembership `json:"-" gorm:"foreignKey:UserID"`
	Tasks       []Task            `json:"-" gorm:"foreignKey:UserID"`
}
