package audit

import (
	activitylogDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/activitylog"
)

// Repository is append-only storage for activity logs. There is no update or
// delete; the trail is immutable once written.
type Repository interface {
	Create(log *activitylogDatamodel.ActivityLog) error
	// List returns logs newest first with offset pagination, plus the total
	// row count for the page envelope.
	List(limit, offset int) ([]*activitylogDatamodel.ActivityLog, int64, error)
}
