package activitylog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLog is an append-only security event record. user_id is null for
// unauthenticated failures (e.g. login with an unknown email).
type ActivityLog struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	OrganisationID *uuid.UUID `gorm:"type:uuid" json:"organisation_id,omitempty"`
	DepartmentID   *uuid.UUID `gorm:"type:uuid" json:"department_id,omitempty"`
	Action         string     `gorm:"not null" json:"action"`
	Timestamp      time.Time  `gorm:"not null;index" json:"timestamp"`
}

func (ActivityLog) TableName() string { return "activity_logs" }

func (l *ActivityLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	return nil
}
