package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the persisted user record. Role is stored lowercase; callers
// normalize at the boundary before writing.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName      string     `gorm:"not null" json:"first_name"`
	LastName       string     `gorm:"not null" json:"last_name"`
	Age            int        `json:"age"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string     `gorm:"not null" json:"-"`
	Role           string     `gorm:"not null;default:employee" json:"role"`
	OrganisationID *uuid.UUID `gorm:"type:uuid" json:"organisation_id,omitempty"`
	DepartmentID   *uuid.UUID `gorm:"type:uuid" json:"department_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
