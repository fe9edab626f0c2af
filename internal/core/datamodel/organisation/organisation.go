package organisation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organisation struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string     `gorm:"not null" json:"name"`
	Address        string     `json:"address"`
	EmployeesCount int        `gorm:"default:0" json:"employees_count"`
	AdminID        *uuid.UUID `gorm:"type:uuid" json:"admin_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Organisation) TableName() string { return "organisations" }

func (o *Organisation) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
