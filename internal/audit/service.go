package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/auth"
	activitylogDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/activitylog"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Record appends one activity log entry. Callers invoke it after their
// primary write has committed; a failure here does not undo that write.
// Service satisfies auth.AuditRecorder.
func (s *Service) Record(ctx context.Context, userID *uuid.UUID, action string, orgID, deptID *uuid.UUID) error {
	entry := &activitylogDatamodel.ActivityLog{
		UserID:         userID,
		OrganisationID: orgID,
		DepartmentID:   deptID,
		Action:         action,
	}
	if err := s.repo.Create(entry); err != nil {
		s.logger.Error("activity log write failed", "action", action, "error", err)
		return err
	}
	return nil
}

type Page struct {
	Logs  []*activitylogDatamodel.ActivityLog `json:"logs"`
	Total int64                               `json:"total"`
	Page  int                                 `json:"page"`
	Limit int                                 `json:"limit"`
}

// List returns activity logs newest first. Only superadmins and organisation
// admins may read the trail.
func (s *Service) List(ctx context.Context, actor auth.Principal, page, limit int) (*Page, error) {
	if err := auth.Authorize(actor, auth.ActionLogView, auth.Target{}); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	logs, total, err := s.repo.List(limit, (page-1)*limit)
	if err != nil {
		return nil, internal.NewInternalError("failed to list activity logs", err)
	}
	return &Page{Logs: logs, Total: total, Page: page, Limit: limit}, nil
}
