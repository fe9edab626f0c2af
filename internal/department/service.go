package department

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/auth"
	departmentDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/department"
)

type Service struct {
	repo   Repository
	audit  auth.AuditRecorder
	logger *slog.Logger
}

func NewService(repo Repository, audit auth.AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Create makes a new department inside an organisation. Names are unique per
// organisation, case-insensitively; the check runs inside the insert
// transaction. An optional initial manager must already belong to the same
// organisation.
func (s *Service) Create(ctx context.Context, actor auth.Principal, dto CreateDepartmentDTO) (*departmentDatamodel.Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := auth.Authorize(actor, auth.ActionDepartmentCreate, auth.Target{OrganisationID: &dto.OrganisationID}); err != nil {
		return nil, err
	}

	org, err := s.repo.GetOrganisation(dto.OrganisationID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load organisation", err)
	}
	if org == nil {
		return nil, internal.ErrOrganisationNotFound
	}

	if dto.ManagerID != nil {
		if err := s.checkManagerCandidate(*dto.ManagerID, dto.OrganisationID); err != nil {
			return nil, err
		}
	}

	dept := &departmentDatamodel.Department{
		Name:           dto.Name,
		OrganisationID: dto.OrganisationID,
		ManagerID:      dto.ManagerID,
	}

	err = s.repo.WithTx(func(tx Repository) error {
		existing, findErr := tx.FindByNameInOrganisation(dto.OrganisationID, dto.Name, nil)
		if findErr != nil {
			return internal.NewInternalError("failed to check department name", findErr)
		}
		if existing != nil {
			return internal.NewConflictError("Department with this name already exists in the organisation", internal.ErrCodeDuplicateName)
		}
		return tx.Create(dept)
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to create department", err)
	}

	if err := s.audit.Record(ctx, &actor.ID, fmt.Sprintf("Created department: %s", dept.Name), &dept.OrganisationID, &dept.ID); err != nil {
		return dept, internal.NewInternalError("failed to record department creation", err)
	}
	return dept, nil
}

// List returns the departments visible to the actor: all for superadmin, the
// organisation's for an organisation admin, and a singleton with the actor's
// own department otherwise.
func (s *Service) List(ctx context.Context, actor auth.Principal) ([]*departmentDatamodel.Department, error) {
	scope, err := auth.ListScope(actor, auth.ActionDepartmentList)
	if err != nil {
		return nil, err
	}

	switch scope {
	case auth.ScopeAny:
		depts, listErr := s.repo.List()
		if listErr != nil {
			return nil, internal.NewInternalError("failed to list departments", listErr)
		}
		return depts, nil
	case auth.ScopeOrganisation:
		if actor.OrganisationID == nil {
			return []*departmentDatamodel.Department{}, nil
		}
		depts, listErr := s.repo.ListByOrganisation(*actor.OrganisationID)
		if listErr != nil {
			return nil, internal.NewInternalError("failed to list departments", listErr)
		}
		return depts, nil
	case auth.ScopeDepartment:
		if actor.DepartmentID == nil {
			return []*departmentDatamodel.Department{}, nil
		}
		dept, getErr := s.repo.GetByID(*actor.DepartmentID)
		if getErr != nil {
			return nil, internal.NewInternalError("failed to load department", getErr)
		}
		if dept == nil {
			return []*departmentDatamodel.Department{}, nil
		}
		return []*departmentDatamodel.Department{dept}, nil
	default:
		return nil, internal.ErrForbidden
	}
}

func (s *Service) Get(ctx context.Context, actor auth.Principal, id uuid.UUID) (*departmentDatamodel.Department, error) {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}

	if err := auth.Authorize(actor, auth.ActionDepartmentView, auth.Target{OrganisationID: &dept.OrganisationID, DepartmentID: &dept.ID}); err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, dto UpdateDepartmentDTO) (*departmentDatamodel.Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}

	if err := auth.Authorize(actor, auth.ActionDepartmentUpdate, auth.Target{OrganisationID: &dept.OrganisationID, DepartmentID: &dept.ID}); err != nil {
		return nil, err
	}

	if dto.ManagerID != nil {
		if err := s.checkManagerCandidate(*dto.ManagerID, dept.OrganisationID); err != nil {
			return nil, err
		}
	}

	var updated *departmentDatamodel.Department
	err = s.repo.WithTx(func(tx Repository) error {
		current, getErr := tx.GetByID(id)
		if getErr != nil {
			return internal.NewInternalError("failed to load department", getErr)
		}
		if current == nil {
			return internal.ErrDepartmentNotFound
		}

		if dto.Name != nil {
			duplicate, dupErr := tx.FindByNameInOrganisation(current.OrganisationID, *dto.Name, &id)
			if dupErr != nil {
				return internal.NewInternalError("failed to check department name", dupErr)
			}
			if duplicate != nil {
				return internal.NewConflictError("Another department with this name already exists in the organisation", internal.ErrCodeDuplicateName)
			}
			current.Name = *dto.Name
		}
		if dto.ManagerID != nil {
			current.ManagerID = dto.ManagerID
		}

		if updErr := tx.Update(current); updErr != nil {
			return internal.NewInternalError("failed to update department", updErr)
		}
		updated = current
		return nil
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to update department", err)
	}

	if err := s.audit.Record(ctx, &actor.ID, fmt.Sprintf("Updated department: %s", updated.Name), &updated.OrganisationID, &updated.ID); err != nil {
		return updated, internal.NewInternalError("failed to record department update", err)
	}
	return updated, nil
}

// Delete removes the department and detaches its members.
func (s *Service) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return internal.ErrDepartmentNotFound
	}

	if err := auth.Authorize(actor, auth.ActionDepartmentDelete, auth.Target{OrganisationID: &dept.OrganisationID, DepartmentID: &dept.ID}); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete department", err)
	}

	if err := s.audit.Record(ctx, &actor.ID, fmt.Sprintf("Deleted department: %s", dept.Name), &dept.OrganisationID, &id); err != nil {
		return internal.NewInternalError("failed to record department deletion", err)
	}
	return nil
}

// AssignManager promotes the given user to department_manager of the
// department. The user must belong to the same organisation. The role change,
// the user's department membership, and the department's manager reference
// are written in one transaction.
func (s *Service) AssignManager(ctx context.Context, actor auth.Principal, deptID, userID uuid.UUID) (*departmentDatamodel.Department, error) {
	dept, err := s.repo.GetByID(deptID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}

	if err := auth.Authorize(actor, auth.ActionDepartmentAssignManager, auth.Target{OrganisationID: &dept.OrganisationID, DepartmentID: &dept.ID}); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUser(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, internal.ErrUserNotFound
	}
	if user.OrganisationID == nil || *user.OrganisationID != dept.OrganisationID {
		return nil, internal.NewConflictError("User belongs to a different organisation", internal.ErrCodeOrganisationMismatch)
	}

	err = s.repo.WithTx(func(tx Repository) error {
		if txErr := tx.SetUserRoleAndDepartment(userID, string(auth.RoleDepartmentManager), &deptID); txErr != nil {
			return txErr
		}
		return tx.SetManager(deptID, &userID)
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to assign department manager", err)
	}
	dept.ManagerID = &userID

	if err := s.audit.Record(ctx, &actor.ID, fmt.Sprintf("Assigned %s as manager of department: %s", user.Email, dept.Name), &dept.OrganisationID, &dept.ID); err != nil {
		return dept, internal.NewInternalError("failed to record manager assignment", err)
	}
	return dept, nil
}

// RemoveManager demotes the current manager back to employee and clears the
// department's manager reference in one transaction. Removing when no manager
// is set is a no-op.
func (s *Service) RemoveManager(ctx context.Context, actor auth.Principal, deptID uuid.UUID) (*departmentDatamodel.Department, error) {
	dept, err := s.repo.GetByID(deptID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}

	if err := auth.Authorize(actor, auth.ActionDepartmentRemoveManager, auth.Target{OrganisationID: &dept.OrganisationID, DepartmentID: &dept.ID}); err != nil {
		return nil, err
	}

	if dept.ManagerID == nil {
		return dept, nil
	}
	formerManagerID := *dept.ManagerID

	err = s.repo.WithTx(func(tx Repository) error {
		if txErr := tx.SetUserRole(formerManagerID, string(auth.RoleEmployee)); txErr != nil {
			return txErr
		}
		return tx.SetManager(deptID, nil)
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to remove department manager", err)
	}
	dept.ManagerID = nil

	if err := s.audit.Record(ctx, &actor.ID, fmt.Sprintf("Removed manager of department: %s", dept.Name), &dept.OrganisationID, &dept.ID); err != nil {
		return dept, internal.NewInternalError("failed to record manager removal", err)
	}
	return dept, nil
}

func (s *Service) checkManagerCandidate(userID, orgID uuid.UUID) error {
	user, err := s.repo.GetUser(userID)
	if err != nil {
		return internal.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return internal.ErrUserNotFound
	}
	if user.OrganisationID == nil || *user.OrganisationID != orgID {
		return internal.NewConflictError("Manager belongs to a different organisation", internal.ErrCodeOrganisationMismatch)
	}
	return nil
}
