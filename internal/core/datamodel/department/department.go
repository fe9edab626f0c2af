package department

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department belongs to exactly one organisation; organisation_id never
// changes after creation.
type Department struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string     `gorm:"not null" json:"name"`
	OrganisationID uuid.UUID  `gorm:"type:uuid;not null" json:"organisation_id"`
	ManagerID      *uuid.UUID `gorm:"type:uuid" json:"manager_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Department) TableName() string { return "departments" }

func (d *Department) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
