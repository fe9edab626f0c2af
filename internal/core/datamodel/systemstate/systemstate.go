package systemstate

import "time"

// BootstrapMarker is a single-row table recording that the first account has
// been created. The fixed primary key makes concurrent bootstrap attempts
// conflict at the database instead of racing in the service.
type BootstrapMarker struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

func (BootstrapMarker) TableName() string { return "system_bootstrap" }
