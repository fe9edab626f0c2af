package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/org-directory/internal/audit"

	activitylogDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/activitylog"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(log *activitylogDatamodel.ActivityLog) error {
	return r.db.Create(log).Error
}

func (r *AuditRepository) List(limit, offset int) ([]*activitylogDatamodel.ActivityLog, int64, error) {
	var total int64
	if err := r.db.Model(&activitylogDatamodel.ActivityLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []*activitylogDatamodel.ActivityLog
	err := r.db.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&logs).Error
	return logs, total, err
}
